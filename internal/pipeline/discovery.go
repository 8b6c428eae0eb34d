package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/help-global/caseflow/internal/model"
	"github.com/help-global/caseflow/internal/resilience"
	"github.com/help-global/caseflow/internal/state"
	"github.com/help-global/caseflow/pkg/gmail"
)

// discover searches the mailbox for approved-case notifications and creates
// a discovered CaseState for every case number not seen before. Every
// fetched message id is marked seen so it is never evaluated again.
// Returns the number of newly discovered cases.
func (r *Runner) discover(ctx context.Context, doc *state.Document, digest *Digest) (int, error) {
	query := r.searchQuery()
	log := zap.L().With(zap.String("query", query))
	log.Debug("discovery: searching mailbox")

	ids, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) ([]string, error) {
		return r.gmail.Search(ctx, query)
	})
	if err != nil {
		return 0, eris.Wrap(err, "discovery: search")
	}

	caseRe, err := regexp.Compile(regexp.QuoteMeta(r.cfg.Gmail.Phrase) + `\s*(\d{8})`)
	if err != nil {
		return 0, eris.Wrap(err, "discovery: compile case pattern")
	}

	discovered := 0
	for _, id := range ids {
		if doc.SeenMessage(id) {
			continue
		}

		msg, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*gmail.Message, error) {
			return r.gmail.Fetch(ctx, id)
		})
		if err != nil {
			return discovered, eris.Wrapf(err, "discovery: fetch %s", id)
		}

		doc.MarkMessage(id)

		m := caseRe.FindStringSubmatch(msg.Subject + "\n" + msg.Body)
		if m == nil {
			log.Debug("discovery: message without case number", zap.String("id", id))
			continue
		}
		invoiceNumber, _ := strconv.Atoi(m[1])

		if doc.Case(invoiceNumber) == nil {
			doc.PutCase(model.NewCaseState(invoiceNumber, r.now()))
			discovered++
		}
		digest.Addf("📬 found message №%d", invoiceNumber)
		log.Info("discovery: approved case message",
			zap.String("id", id), zap.Int("case", invoiceNumber))
	}

	return discovered, nil
}

// searchQuery builds the Gmail query: sender domain, subject keywords, a
// receipt-date lower bound, and the approved-case phrase.
func (r *Runner) searchQuery() string {
	after := r.now().AddDate(0, 0, -r.cfg.Gmail.LookbackDays).Format("2006/01/02")
	return fmt.Sprintf(`from:%s subject:(%s) after:%s "%s"`,
		r.cfg.Gmail.SenderDomain,
		strings.Join(r.cfg.Gmail.SubjectKeywords, " OR "),
		after,
		r.cfg.Gmail.Phrase,
	)
}
