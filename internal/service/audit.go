package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/pkg/logger"
	"github.com/arbdesk/arbgate/internal/pkg/metrics"
	"github.com/google/uuid"
)

type AuditRepo interface {
	Insert(ctx context.Context, event *model.AuditEvent) error
}

// AuditService writes audit events off the request path. Record never
// blocks: events go through a bounded channel and are dropped (with a
// metric) when the consumer falls behind. A persistence failure is logged
// and swallowed so it can never fail the action being audited.
type AuditService struct {
	eventCh chan *model.AuditEvent
	logFile *os.File
	repo    AuditRepo
	done    chan struct{}
}

func NewAuditService(logDir string, repo AuditRepo) (*AuditService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	// Daily file, append-only; survives DB outages.
	filename := filepath.Join(logDir, "audit-"+time.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	svc := &AuditService{
		eventCh: make(chan *model.AuditEvent, 1000),
		logFile: f,
		repo:    repo,
		done:    make(chan struct{}),
	}

	go svc.processEvents()

	return svc, nil
}

// Record fills in id and timestamp and enqueues the event.
func (s *AuditService) Record(event *model.AuditEvent) {
	if event == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	select {
	case s.eventCh <- event:
	default:
		metrics.AuditDrops.Inc()
		logger.Warn("audit buffer full, dropping event", "action", event.Action, "tenant_id", event.TenantID)
	}
}

func (s *AuditService) processEvents() {
	defer close(s.done)
	encoder := json.NewEncoder(s.logFile)
	for event := range s.eventCh {
		if s.repo != nil {
			if err := s.repo.Insert(context.Background(), event); err != nil {
				logger.Error("failed to persist audit event", "error", err, "action", event.Action)
			}
		}
		if err := encoder.Encode(event); err != nil {
			logger.Error("failed to write audit file", "error", err)
		}
	}
}

// Close drains the channel before releasing the file.
func (s *AuditService) Close() {
	close(s.eventCh)
	<-s.done
	s.logFile.Close()
}
