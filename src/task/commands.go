package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/seventv/SpriteProcessor/src/app"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/sirupsen/logrus"
)

var ErrUnknownCommand = fmt.Errorf("unknown command")

// sourceIDs maps a source index to the id of the image it produced. Sources
// that were skipped map to uuid.Nil.
type sourceIDs []uuid.UUID

func (s sourceIDs) get(idx int) uuid.UUID {
	if idx < 0 || idx >= len(s) {
		return uuid.Nil
	}

	return s[idx]
}

// applyCommand translates one job command into an edit of a. Commands that
// point at missing images do nothing.
func applyCommand(a *app.App, ids sourceIDs, cmd job.Command) error {
	var ok bool

	switch cmd.Op {
	case job.RemoveCommand:
		ok = a.Remove(ids.get(cmd.Index))
	case job.ReorderCommand:
		ok = a.Reorder(ids.get(cmd.Index), ids.get(cmd.Target))
	case job.OffsetCommand:
		ok = a.SetOffset(ids.get(cmd.Index), cmd.Value)
	case job.ClearCommand:
		a.Clear()
		ok = true
	case job.ToggleCommand:
		a.TogglePlay()
		ok = true
	case job.ZoomInCommand:
		a.ZoomIn()
		ok = true
	case job.ZoomOutCommand:
		a.ZoomOut()
		ok = true
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Op)
	}

	if !ok {
		logrus.Debugf("command %s had no effect (index %d, target %d)", cmd.Op, cmd.Index, cmd.Target)
	}

	return nil
}
