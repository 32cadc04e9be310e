package task

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/seventv/SpriteProcessor/src/app"
	"github.com/seventv/SpriteProcessor/src/configure"
	"github.com/seventv/SpriteProcessor/src/export"
	"github.com/seventv/SpriteProcessor/src/global"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/seventv/SpriteProcessor/src/loader"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrUnknownJobProvider    = fmt.Errorf("unknown job provider")
	ErrUnknownResultConsumer = fmt.Errorf("unknown result consumer")
	ErrNoImages              = fmt.Errorf("no images to export")
	ErrNoS3                  = fmt.Errorf("s3 is not configured")
)

type Task struct {
	id uuid.UUID

	job job.Job

	mtx       sync.Mutex
	started   bool
	stopped   bool
	completed bool
	failed    error

	dir     string
	files   []job.File
	skipped []string

	events chan TaskEvent

	ctx    context.Context
	cancel context.CancelFunc
}

func New(ctx context.Context, job job.Job) *Task {
	ctx, cancel := context.WithCancel(ctx)
	id, _ := uuid.NewRandom()
	return &Task{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		job:    job,
		events: make(chan TaskEvent, 20),
	}
}

func (t *Task) ID() uuid.UUID {
	return t.id
}

func (t *Task) Start(ctx global.Context) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.started || t.stopped || t.completed {
		return
	}

	t.started = true

	go t.start(ctx)
}

func (t *Task) emit(typ TaskEventType) {
	t.events <- TaskEvent{
		Type:      typ,
		Timestamp: time.Now(),
	}
}

func (t *Task) start(ctx global.Context) {
	defer close(t.events)
	defer func() {
		if err := t.cleanup(); err != nil {
			logrus.Error("failed to cleanup: ", err)
		}
	}()

	t.emit(Started)

	var (
		err   error
		files []loader.File
		sink  export.Sink
		a     *app.App
		ids   sourceIDs
	)

	t.dir = path.Join(ctx.Config().WorkingDir, t.id.String())
	if err = os.MkdirAll(t.dir, 0700); err != nil {
		goto completed
	}

	if files, err = t.download(ctx); err != nil {
		goto completed
	}

	t.emit(Downloaded)

	if sink, err = t.sink(ctx); err != nil {
		goto completed
	}

	a = app.New(t.ctx, app.ConfigFromSheet(configure.Sheet(t.job.Settings)))
	defer a.Close()

	// one source at a time so every source index maps to its image
	ids = make(sourceIDs, len(files))
	for i, f := range files {
		added, loadErr := a.AddFiles(t.ctx, []loader.File{f})
		if t.ctx.Err() != nil {
			err = t.ctx.Err()
			goto completed
		}

		if len(added) == 0 {
			if loadErr != nil {
				logrus.WithError(loadErr).Warnf("skipping source %d of %s", i, t.job.ID)
			}
			t.skipped = append(t.skipped, f.Name)
			continue
		}

		ids[i] = added[0].ID
		if v := t.job.Sources[i].OffsetX; v != "" {
			a.SetOffset(ids[i], v)
		}
	}

	t.emit(Loaded)

	for _, cmd := range t.job.Commands {
		if err = applyCommand(a, ids, cmd); err != nil {
			goto completed
		}
	}

	t.emit(Composed)

	{
		var file *job.File
		if file, err = a.Export(t.ctx, sink); err != nil {
			goto completed
		}

		if file == nil {
			err = ErrNoImages
			goto completed
		}

		t.files = append(t.files, *file)

		if t.job.Settings.Preview {
			if file, err = a.ExportPreview(t.ctx, sink); err != nil {
				goto completed
			}
			if file != nil {
				t.files = append(t.files, *file)
			}
		}

		if t.job.Settings.Display {
			if file, err = a.ExportDisplay(t.ctx, sink); err != nil {
				goto completed
			}
			if file != nil {
				t.files = append(t.files, *file)
			}
		}
	}

	t.emit(Exported)

completed:
	t.mtx.Lock()
	t.completed = true
	t.failed = err
	stopped := t.stopped
	t.mtx.Unlock()

	switch {
	case stopped:
		t.emit(Stopped)
	case err != nil:
		t.emit(Failed)
	default:
		t.emit(Completed)
	}
}

// download fetches every source in order. S3 sources are staged in the task
// directory.
func (t *Task) download(ctx global.Context) ([]loader.File, error) {
	files := make([]loader.File, len(t.job.Sources))

	for i, src := range t.job.Sources {
		f := loader.File{
			Name:        src.Name,
			ContentType: src.ContentType,
		}

		switch src.RawProvider {
		case job.AwsProvider:
			if ctx.Instances().AwsS3 == nil {
				return nil, ErrNoS3
			}

			details := job.RawProviderDetailsAws{}
			if err := json.Unmarshal(src.RawProviderDetails, &details); err != nil {
				return nil, err
			}

			if f.Name == "" {
				f.Name = path.Base(details.Key)
			}

			if f.ContentType == "" {
				ct, err := ctx.Instances().AwsS3.ContentType(t.ctx, details.Bucket, details.Key)
				if err != nil {
					return nil, err
				}
				f.ContentType = ct
			}

			data, err := t.stage(ctx, i, details)
			if err != nil {
				return nil, err
			}
			f.Data = data
		case job.LocalProvider:
			details := job.RawProviderDetailsLocal{}
			if err := json.Unmarshal(src.RawProviderDetails, &details); err != nil {
				return nil, err
			}

			if f.Name == "" {
				f.Name = filepath.Base(details.Path)
			}

			data, err := os.ReadFile(details.Path)
			if err != nil {
				return nil, err
			}
			f.Data = data
		default:
			return nil, ErrUnknownJobProvider
		}

		files[i] = f

		if err := t.ctx.Err(); err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (t *Task) stage(ctx global.Context, idx int, details job.RawProviderDetailsAws) ([]byte, error) {
	fileName := path.Join(t.dir, fmt.Sprintf("raw_%04d", idx))

	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := ctx.Instances().AwsS3.DownloadFile(t.ctx, details.Bucket, details.Key, f); err != nil {
		return nil, err
	}

	return os.ReadFile(fileName)
}

func (t *Task) sink(ctx global.Context) (export.Sink, error) {
	switch t.job.ResultConsumer {
	case job.AwsConsumer:
		if ctx.Instances().AwsS3 == nil {
			return nil, ErrNoS3
		}

		details := job.ResultConsumerDetailsAws{}
		if err := json.Unmarshal(t.job.ResultConsumerDetails, &details); err != nil {
			return nil, err
		}

		return export.S3Sink{
			S3:        ctx.Instances().AwsS3,
			Bucket:    details.Bucket,
			KeyFolder: details.KeyFolder,
		}, nil
	case job.LocalConsumer:
		details := job.ResultConsumerDetailsLocal{}
		if err := json.Unmarshal(t.job.ResultConsumerDetails, &details); err != nil {
			return nil, err
		}

		return export.LocalSink{Dir: details.PathFolder}, nil
	default:
		return nil, ErrUnknownResultConsumer
	}
}

func (t *Task) Stop() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.stopped || t.completed {
		return
	}

	t.stopped = true
	t.cancel()
}

// Done is closed once the task finished and cleaned up.
func (t *Task) Done() <-chan struct{} {
	return t.ctx.Done()
}

func (t *Task) Events() <-chan TaskEvent {
	return t.events
}

func (t *Task) Completed() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.completed
}

func (t *Task) Failed() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.failed
}

func (t *Task) Started() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.started
}

func (t *Task) Stopped() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.stopped
}

// Files are the outputs of a completed task.
func (t *Task) Files() []job.File {
	return t.files
}

// Skipped are the names of sources that did not load.
func (t *Task) Skipped() []string {
	return t.skipped
}

func (t *Task) cleanup() error {
	if !t.started {
		return nil
	}

	t.emit(Cleaned)

	t.cancel()
	if t.dir == "" {
		return nil
	}

	return os.RemoveAll(t.dir)
}

func (t *Task) Job() job.Job {
	return t.job
}
