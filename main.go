package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"

	"github.com/seventv/SpriteProcessor/src/app"
	"github.com/seventv/SpriteProcessor/src/aws"
	"github.com/seventv/SpriteProcessor/src/configure"
	"github.com/seventv/SpriteProcessor/src/export"
	"github.com/seventv/SpriteProcessor/src/global"
	"github.com/seventv/SpriteProcessor/src/loader"
	"github.com/seventv/SpriteProcessor/src/rmq"
	"github.com/seventv/SpriteProcessor/src/task"
	"github.com/sirupsen/logrus"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	debug.SetGCPercent(2000)
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		logrus.Error(s)
	})
	if err != nil {
		logrus.Error("failed to setup panic handler: ", err)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		logrus.Info("7TV Sprite Processor")
		logrus.Infof("Version: %s", Version)
		logrus.Infof("build.Time: %s", Time)
		logrus.Infof("build.User: %s", User)
	}

	logrus.Debug("MaxProcs: ", runtime.GOMAXPROCS(0))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	c, cancel := context.WithCancel(context.Background())

	ctx := global.New(c, config)

	if config.Rmq.ServerURL == "" {
		go func() {
			<-sig
			logrus.Info("interrupted")
			cancel()
		}()

		if err := compose(ctx); err != nil {
			logrus.Fatal("compose failed: ", err)
		}
		os.Exit(0)
	}

	ctx.Instances().Rmq = rmq.New(ctx)
	if ctx.Config().Aws.Region != "" {
		ctx.Instances().AwsS3 = aws.NewS3(ctx)
	}

	go task.Listen(ctx)

	logrus.Info("running")

	done := make(chan struct{})
	go func() {
		<-sig
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			logrus.Fatal("force shutdown")
		}()

		logrus.Info("shutting down")

		ctx.Instances().Rmq.Shutdown()

		ctx.Wait()

		close(done)
	}()

	<-done

	logrus.Info("shutdown")
	os.Exit(0)
}

// compose builds one sheet from the input files on the command line.
func compose(ctx global.Context) error {
	cfg := ctx.Config()

	files := make([]loader.File, 0, len(cfg.Inputs))
	for _, p := range cfg.Inputs {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, loader.File{Name: filepath.Base(p), Data: data})
	}

	a := app.New(ctx, app.ConfigFromSheet(cfg.Sheet))
	defer a.Close()

	if _, err := a.AddFiles(ctx, files); err != nil {
		logrus.Warn("some inputs were skipped: ", err)
	}

	status := a.Status()
	logrus.WithFields(logrus.Fields{
		"images": status.Count,
		"width":  status.Width,
		"height": status.Height,
	}).Info(status.Text)

	sink := export.LocalSink{Dir: cfg.OutputDir}

	file, err := a.Export(ctx, sink)
	if err != nil || file == nil {
		return err
	}

	if cfg.Sheet.Preview {
		if _, err := a.ExportPreview(ctx, sink); err != nil {
			return err
		}
	}

	if cfg.Sheet.Display {
		if _, err := a.ExportDisplay(ctx, sink); err != nil {
			return err
		}
	}

	return nil
}
