package global

import (
	"context"
	"sync"

	"github.com/seventv/SpriteProcessor/src/configure"
)

// Context is the process wide context handed to every long lived component.
type Context interface {
	context.Context
	Instances() *Instances
	Config() *configure.Config
	// Go runs fn in a tracked goroutine.
	Go(fn func())
	// Wait blocks until every tracked goroutine returned.
	Wait()
}

type GlobalContext struct {
	context.Context
	Insts *Instances
	Cfg   *configure.Config
	wg    *sync.WaitGroup
}

func New(ctx context.Context, config *configure.Config) Context {
	return &GlobalContext{
		Context: ctx,
		Insts:   &Instances{},
		Cfg:     config,
		wg:      &sync.WaitGroup{},
	}
}

func (g *GlobalContext) Instances() *Instances {
	return g.Insts
}

func (g *GlobalContext) Config() *configure.Config {
	return g.Cfg
}

func (g *GlobalContext) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

func (g *GlobalContext) Wait() {
	g.wg.Wait()
}
