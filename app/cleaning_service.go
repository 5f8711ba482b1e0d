package app

import (
	"context"
	"log"
	"strings"
	"time"

	"tidytab/domain/cleaning"
	"tidytab/domain/table"
	"tidytab/internal/errors"
	"tidytab/ports"
)

// CleanedKey is the store key of a caller's cleaning session
func CleanedKey(sessionID string) string {
	return sessionID + "/cleaned_df"
}

// CleaningOptions bounds uploads and previews
type CleaningOptions struct {
	MaxUploadBytes int64
	PreviewRows    int
	PreviewColumns int
}

// DefaultCleaningOptions returns the limits used when none are configured
func DefaultCleaningOptions() CleaningOptions {
	return CleaningOptions{
		MaxUploadBytes: 50 * 1024 * 1024,
		PreviewRows:    10,
		PreviewColumns: 10,
	}
}

// CleaningService runs the upload → decide → download workflow over a session store
type CleaningService struct {
	parser   ports.TableParser
	store    ports.SessionStore
	encoders map[string]ports.TableEncoder
	opts     CleaningOptions
	now      func() time.Time
}

// UploadResult is returned after a file has been cleaned
type UploadResult struct {
	Filename   string                 `json:"filename"`
	Preview    table.Preview          `json:"preview"`
	Duplicates []table.DuplicateGroup `json:"duplicates"`
	Version    int64                  `json:"version"`
}

// ResolveResult is returned after a decision has been applied
type ResolveResult struct {
	Preview table.Preview `json:"preview"`
	Removed []string      `json:"removed"`
	Version int64         `json:"version"`
}

// FileResult is a generated download
type FileResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewCleaningService creates a cleaning service. encoders are keyed by format
// name; "csv" must be present as it is the default.
func NewCleaningService(parser ports.TableParser, store ports.SessionStore, encoders map[string]ports.TableEncoder, opts CleaningOptions) *CleaningService {
	return &CleaningService{
		parser:   parser,
		store:    store,
		encoders: encoders,
		opts:     opts,
		now:      time.Now,
	}
}

// Upload parses, normalizes and inspects a file and makes it the caller's
// working table, replacing any earlier session. The stored session is left
// untouched when any step fails.
func (s *CleaningService) Upload(ctx context.Context, sessionID, filename string, content []byte) (*UploadResult, error) {
	if s.opts.MaxUploadBytes > 0 && int64(len(content)) > s.opts.MaxUploadBytes {
		return nil, errors.PayloadTooLarge("upload", int64(len(content)), s.opts.MaxUploadBytes)
	}
	if !s.parser.Supports(filename) {
		return nil, errors.UnsupportedFormat(filename)
	}

	raw, err := s.parser.Parse(filename, content)
	if err != nil {
		return nil, err
	}

	session := cleaning.Begin(filename, raw, s.now())
	payload, err := session.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode session")
	}
	version, err := s.store.Put(ctx, CleanedKey(sessionID), payload)
	if err != nil {
		return nil, err
	}

	log.Printf("[CleaningService] Session %s uploaded %s: %d rows, %d columns, %d duplicate groups",
		sessionID, filename, session.Table.RowCount(), len(session.Table.Columns), len(session.Duplicates))

	return &UploadResult{
		Filename:   filename,
		Preview:    session.Table.Head(s.opts.PreviewRows, 0),
		Duplicates: session.Duplicates,
		Version:    version,
	}, nil
}

// Resolve applies a decision to the stored session. The write only succeeds
// if nobody changed the session since it was read.
func (s *CleaningService) Resolve(ctx context.Context, sessionID string, decision cleaning.Decision) (*ResolveResult, error) {
	key := CleanedKey(sessionID)
	session, version, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := session.Apply(decision, s.now())
	if err != nil {
		return nil, errors.NoActiveSession()
	}

	payload, err := next.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode session")
	}
	version, err = s.store.CompareAndSwap(ctx, key, payload, version)
	if err != nil {
		if errors.HasCode(err, errors.CodeVersionConflict) {
			log.Printf("[CleaningService] Session %s changed during resolve", sessionID)
		}
		return nil, err
	}

	if decision.Ignore {
		log.Printf("[CleaningService] Session %s kept all columns", sessionID)
	} else {
		log.Printf("[CleaningService] Session %s removed %v", sessionID, next.Removed[len(session.Removed):])
	}

	return &ResolveResult{
		Preview: next.Table.Head(s.opts.PreviewRows, s.opts.PreviewColumns),
		Removed: next.Removed,
		Version: version,
	}, nil
}

// Session returns the caller's current cleaning session
func (s *CleaningService) Session(ctx context.Context, sessionID string) (*cleaning.Session, error) {
	session, _, err := s.load(ctx, CleanedKey(sessionID))
	return session, err
}

// Export encodes the working table. An empty format means CSV.
func (s *CleaningService) Export(ctx context.Context, sessionID, format string) (*FileResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	encoder, ok := s.encoders[format]
	if !ok {
		return nil, errors.InvalidInput("unknown export format: " + format)
	}

	session, _, err := s.load(ctx, CleanedKey(sessionID))
	if err != nil {
		return nil, err
	}

	data, err := encoder.Encode(session.Table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode table")
	}
	return &FileResult{
		Filename:    "cleaned_data" + encoder.Extension(),
		ContentType: encoder.ContentType(),
		Data:        data,
	}, nil
}

// Abandon discards the caller's cleaning session
func (s *CleaningService) Abandon(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, CleanedKey(sessionID)); err != nil {
		return err
	}
	log.Printf("[CleaningService] Session %s abandoned", sessionID)
	return nil
}

func (s *CleaningService) load(ctx context.Context, key string) (*cleaning.Session, int64, error) {
	rec, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, errors.NoActiveSession()
	}

	session, err := cleaning.Unmarshal(rec.Payload)
	if err != nil {
		return nil, 0, errors.WithCode(errors.CodeInternalError, err)
	}
	if !session.Active() {
		return nil, 0, errors.NoActiveSession()
	}
	return session, rec.Version, nil
}
