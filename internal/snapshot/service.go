package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/keshon/snapshot-bot/internal/holders"
	"github.com/keshon/snapshot-bot/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fixed reply texts. Users never see why a snapshot failed.
const (
	ReplyMessage = "Here is your snapshot:"
	ErrorMessage = "There was an error fetching the data. Please try again."
)

// Attachment is a file handed to a Replier. Reader is only valid for the
// duration of the ReplyReport call.
type Attachment struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Replier delivers the outcome of one invocation to whoever asked for it.
type Replier interface {
	ReplyReport(ctx context.Context, content string, file Attachment) error
	ReplyError(ctx context.Context, content string) error
}

// Request is one snapshot invocation. InvocationID keeps the transient
// report file unique; a UUID is generated when it is empty.
type Request struct {
	PolicyID     string
	InvocationID string
}

// Options configures a Service.
type Options struct {
	ReportDir string
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Service runs snapshot invocations.
type Service struct {
	fetcher   PageFetcher
	reportDir string
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewService returns a Service fetching pages through fetcher.
func NewService(fetcher PageFetcher, opts Options) *Service {
	if opts.ReportDir == "" {
		opts.ReportDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		reportDir: opts.ReportDir,
		metrics:   opts.Metrics,
		log:       opts.Logger.Named("snapshot"),
	}
}

// Handle runs one invocation end to end and replies through r. Invocation
// errors are logged and answered with ErrorMessage; the returned error is
// non-nil only when the reply itself could not be delivered. The report file
// never outlives the call.
func (s *Service) Handle(ctx context.Context, req Request, r Replier) error {
	start := time.Now()
	policyID := strings.TrimSpace(req.PolicyID)
	invocationID := req.InvocationID
	if invocationID == "" {
		invocationID = uuid.NewString()
	}
	log := s.log.With(zap.String("policy_id", policyID), zap.String("invocation_id", invocationID))
	log.Info("Policy ID received")

	fail := func(outcome string) error {
		s.metrics.RecordSnapshot(outcome, 0, time.Since(start))
		if err := r.ReplyError(ctx, ErrorMessage); err != nil {
			return fmt.Errorf("reply error message: %w", err)
		}
		return nil
	}

	if err := ValidatePolicyID(policyID); err != nil {
		log.Warn("Rejected policy ID", zap.Error(err))
		return fail(metrics.OutcomeInvalid)
	}

	list, err := Collect(ctx, s.countingFetcher(), policyID)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var httpErr *holders.HTTPError
		if errors.As(err, &httpErr) {
			fields = append(fields,
				zap.Int("status_code", httpErr.StatusCode()),
				zap.Bool("credential_rejected", httpErr.Unauthorized()))
		}
		log.Error("Error fetching data from API", fields...)
		return fail(metrics.OutcomeFailed)
	}
	log.Info("Total holders retrieved", zap.Int("holders", len(list)))

	outcome := metrics.OutcomeSuccess
	if len(list) == 0 {
		// Still delivered as an empty report.
		log.Warn("Snapshot has no holders")
		outcome = metrics.OutcomeEmpty
	}

	path := reportPath(s.reportDir, policyID, invocationID)
	if err := writeReport(path, Format(list)); err != nil {
		log.Error("Error writing report", zap.Error(err))
		return fail(metrics.OutcomeFailed)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Error("Error removing report", zap.String("path", path), zap.Error(err))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		log.Error("Error opening report", zap.Error(err))
		return fail(metrics.OutcomeFailed)
	}
	defer f.Close()

	err = r.ReplyReport(ctx, ReplyMessage, Attachment{
		Name:        AttachmentName(policyID),
		ContentType: "text/plain",
		Reader:      f,
	})
	s.metrics.RecordSnapshot(outcome, len(list), time.Since(start))
	if err != nil {
		return fmt.Errorf("reply with report: %w", err)
	}

	log.Info("Snapshot delivered", zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Service) countingFetcher() PageFetcher {
	return PageFetcherFunc(func(ctx context.Context, policyID, cursor string) (*holders.Page, error) {
		page, err := s.fetcher.FetchPage(ctx, policyID, cursor)
		if err == nil {
			s.metrics.RecordPage()
		}
		return page, err
	})
}
