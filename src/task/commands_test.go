package task

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/seventv/SpriteProcessor/src/app"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/seventv/SpriteProcessor/src/layout"
	"github.com/seventv/SpriteProcessor/src/loader"
	"github.com/seventv/SpriteProcessor/src/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadApp(t *testing.T, n int) (*app.App, sourceIDs) {
	t.Helper()

	a := app.New(context.Background(), layout.DefaultConfig())
	t.Cleanup(a.Close)

	files := make([]loader.File, n)
	for i := range files {
		buf := &bytes.Buffer{}
		require.NoError(t, png.Encode(buf, imaging.New(i+1, i+1, color.NRGBA{A: 0xff})))
		files[i] = loader.File{Name: "f.png", ContentType: "image/png", Data: buf.Bytes()}
	}

	added, err := a.AddFiles(context.Background(), files)
	require.NoError(t, err)

	ids := make(sourceIDs, n)
	for i, img := range added {
		ids[i] = img.ID
	}

	return a, ids
}

func jobCommand(op string, index, target int, value string) job.Command {
	return job.Command{Op: job.CommandOp(op), Index: index, Target: target, Value: value}
}

func TestSourceIDsGet(t *testing.T) {
	id := uuid.New()
	ids := sourceIDs{id, uuid.Nil}

	assert.Equal(t, id, ids.get(0))
	assert.Equal(t, uuid.Nil, ids.get(1))
	assert.Equal(t, uuid.Nil, ids.get(-1))
	assert.Equal(t, uuid.Nil, ids.get(2))
}

func TestApplyCommand(t *testing.T) {
	a, ids := loadApp(t, 3)

	require.NoError(t, applyCommand(a, ids, jobCommand("reorder", 2, 0, "")))
	assert.Equal(t, ids[2], a.Images()[0].ID)

	require.NoError(t, applyCommand(a, ids, jobCommand("offset", 1, 0, "4")))
	assert.Equal(t, 4, a.Images()[2].OffsetX)

	require.NoError(t, applyCommand(a, ids, jobCommand("remove", 0, 0, "")))
	assert.Equal(t, 2, a.Count())

	// already removed
	require.NoError(t, applyCommand(a, ids, jobCommand("remove", 0, 0, "")))
	assert.Equal(t, 2, a.Count())

	require.NoError(t, applyCommand(a, ids, jobCommand("zoom_in", 0, 0, "")))
	assert.InDelta(t, 1.1, a.Config().Zoom, 1e-9)
	require.NoError(t, applyCommand(a, ids, jobCommand("zoom_out", 0, 0, "")))
	assert.InDelta(t, 1.0, a.Config().Zoom, 1e-9)

	require.NoError(t, applyCommand(a, ids, jobCommand("toggle", 0, 0, "")))
	assert.Equal(t, preview.Paused, a.Preview().State())

	require.NoError(t, applyCommand(a, ids, jobCommand("clear", 0, 0, "")))
	assert.Equal(t, 0, a.Count())

	assert.ErrorIs(t, applyCommand(a, ids, jobCommand("shrink", 0, 0, "")), ErrUnknownCommand)
}
