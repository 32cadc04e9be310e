package configure

import (
	"io"

	"github.com/sirupsen/logrus"
)

func initLogging(level string, noLogs bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if noLogs {
		logrus.SetOutput(io.Discard)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}

	logrus.SetLevel(lvl)
}
