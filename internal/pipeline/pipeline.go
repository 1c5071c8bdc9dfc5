// Package pipeline tracks client-side upload and extraction flows. Each
// submitted file moves through uploading, uploaded, processing, and completed;
// failures land in error and can be retried. All state lives in an explicit
// Pipeline value guarded by a single mutex.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	"invodex/internal/domain"
)

const defaultTick = 200 * time.Millisecond

// Status is a file's position in the upload/extraction flow.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// FileState is the tracked state of one submitted file. Progress runs 0..100.
// DocumentID is set once the upload succeeds and survives extraction failures
// so a retry is not required to re-inspect it.
type FileState struct {
	ID         string
	Path       string
	Name       string
	Size       int64
	Status     Status
	Progress   int
	DocumentID string
	Result     *domain.ExtractionResult
	Err        string
}

// RejectedFile is a submission that failed client-side validation and never
// entered the pipeline.
type RejectedFile struct {
	Path   string
	Reason string
}

// API is the server surface the pipeline needs. *client.Client satisfies it.
type API interface {
	UploadDocument(ctx context.Context, path string) (*domain.UploadedDocument, error)
	ExtractDocument(ctx context.Context, documentID string) (*domain.ExtractionResult, error)
}

// Pipeline runs upload and extraction flows for submitted files.
type Pipeline struct {
	api        API
	tick       time.Duration
	onComplete func(*domain.Invoice)

	mu    sync.Mutex
	files map[string]*FileState
	order []string
	wg    sync.WaitGroup
}

// New creates a Pipeline talking to api. tick controls how often upload
// progress advances; non-positive means the default. onComplete, if non-nil,
// is invoked with each successfully extracted invoice.
func New(api API, tick time.Duration, onComplete func(*domain.Invoice)) *Pipeline {
	if tick <= 0 {
		tick = defaultTick
	}
	return &Pipeline{
		api:        api,
		tick:       tick,
		onComplete: onComplete,
		files:      make(map[string]*FileState),
	}
}

// Submit validates the given paths and starts an upload/extraction flow for
// each accepted file. Rejected files are reported and never tracked.
func (p *Pipeline) Submit(ctx context.Context, paths ...string) (ids []string, rejected []RejectedFile) {
	for _, path := range paths {
		name := filepath.Base(path)

		// Validate file extension
		ft, ok := domain.FileTypeForName(name)
		if !ok {
			rejected = append(rejected, RejectedFile{Path: path, Reason: "unsupported file type"})
			continue
		}

		// Validate file size
		info, err := os.Stat(path)
		if err != nil {
			rejected = append(rejected, RejectedFile{Path: path, Reason: err.Error()})
			continue
		}
		if info.Size() > domain.MaxUploadBytes {
			rejected = append(rejected, RejectedFile{
				Path:   path,
				Reason: fmt.Sprintf("file exceeds %d MiB limit", domain.MaxUploadBytes/(1024*1024)),
			})
			continue
		}

		// Preflight PDFs before spending an upload on them
		if ft == domain.FileTypePDF {
			if err := pdfcpu.ValidateFile(path, nil); err != nil {
				rejected = append(rejected, RejectedFile{Path: path, Reason: fmt.Sprintf("invalid PDF: %v", err)})
				continue
			}
		}

		id := uuid.NewString()
		p.mu.Lock()
		p.files[id] = &FileState{
			ID:     id,
			Path:   path,
			Name:   name,
			Size:   info.Size(),
			Status: StatusUploading,
		}
		p.order = append(p.order, id)
		p.mu.Unlock()

		ids = append(ids, id)
		p.wg.Add(1)
		go p.run(ctx, id, path)
	}
	return ids, rejected
}

// Retry restarts a failed flow. It is only valid from the error state; the
// file's progress, error, document id, and result are all cleared.
func (p *Pipeline) Retry(ctx context.Context, id string) error {
	p.mu.Lock()
	st, ok := p.files[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: unknown file id %s", domain.ErrNotFound, id)
	}
	if st.Status != StatusError {
		p.mu.Unlock()
		return fmt.Errorf("%w: retry requires error state, file is %s", domain.ErrInvalidInput, st.Status)
	}
	st.Status = StatusUploading
	st.Progress = 0
	st.Err = ""
	st.DocumentID = ""
	st.Result = nil
	path := st.Path
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx, id, path)
	return nil
}

// Remove drops a file from the pipeline in any state. An in-flight flow for
// the removed id keeps running but its writes are silently discarded.
func (p *Pipeline) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, id)
	for i, fid := range p.order {
		if fid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Get returns a snapshot of one file's state.
func (p *Pipeline) Get(id string) (FileState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.files[id]
	if !ok {
		return FileState{}, false
	}
	return *st, true
}

// List returns snapshots of all tracked files in submission order.
func (p *Pipeline) List() []FileState {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]FileState, 0, len(p.order))
	for _, id := range p.order {
		if st, ok := p.files[id]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// Wait blocks until every in-flight flow has settled.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// run drives one file through upload then extraction.
func (p *Pipeline) run(ctx context.Context, id, path string) {
	defer p.wg.Done()

	doc, err := p.upload(ctx, id, path)
	if err != nil {
		p.fail(id, err)
		return
	}

	p.update(id, func(st *FileState) {
		st.Status = StatusUploaded
		st.Progress = 100
		st.DocumentID = doc.DocumentID
	})
	p.update(id, func(st *FileState) {
		st.Status = StatusProcessing
	})

	result, err := p.api.ExtractDocument(ctx, doc.DocumentID)
	if err != nil {
		p.fail(id, fmt.Errorf("extracting %s: %w", filepath.Base(path), err))
		return
	}

	completed := p.update(id, func(st *FileState) {
		st.Status = StatusCompleted
		st.Result = result
	})
	if completed && p.onComplete != nil && result.Invoice != nil {
		p.onComplete(result.Invoice)
	}
}

// upload calls the API with a progress ticker running; the ticker is cancelled
// when the call settles, success or failure.
func (p *Pipeline) upload(ctx context.Context, id, path string) (*domain.UploadedDocument, error) {
	tickCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.advanceProgress(tickCtx, id)

	doc, err := p.api.UploadDocument(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// advanceProgress bumps progress by 10 per tick, holding at 90 until the
// upload settles.
func (p *Pipeline) advanceProgress(ctx context.Context, id string) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.update(id, func(st *FileState) {
				if st.Progress < 90 {
					st.Progress += 10
				}
			})
		}
	}
}

// update applies fn to a tracked file under the lock. Writes against removed
// ids report false and are dropped.
func (p *Pipeline) update(id string, fn func(*FileState)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.files[id]
	if !ok {
		return false
	}
	fn(st)
	return true
}

func (p *Pipeline) fail(id string, err error) {
	p.update(id, func(st *FileState) {
		st.Status = StatusError
		st.Err = err.Error()
	})
}
