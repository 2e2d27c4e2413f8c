package queue

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditLog appends one line per booking event to a file.
type AuditLog struct {
	Path string

	mu  sync.Mutex
	out io.Writer // tests write here instead of Path
}

func NewAuditLog(path string) *AuditLog { return &AuditLog{Path: path} }

// HandleMessage decodes a broker message and appends its line.
func (a *AuditLog) HandleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == "" {
		return fmt.Errorf("event without type or booking id")
	}
	return a.Append(ev)
}

func (a *AuditLog) Append(ev BookingEvent) error {
	line := FormatLine(ev)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.out != nil {
		_, err := io.WriteString(a.out, line)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(a.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders the single-line, human-friendly audit entry.
func FormatLine(ev BookingEvent) string {
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	tourDate := ev.TourDateID
	if tourDate == "" {
		tourDate = "-"
	}
	return fmt.Sprintf("[%s] %s | booking_id=%s | user_id=%s | product_id=%s | product=%q | tour_date_id=%s | tickets=%d | total=%.2f | status=%s | transaction_id=%s\n",
		at.UTC().Format(time.RFC3339), ev.Type, ev.BookingID, ev.UserID, ev.ProductID, ev.ProductName,
		tourDate, ev.Tickets, ev.Total, ev.Status, ev.TransactionID)
}
