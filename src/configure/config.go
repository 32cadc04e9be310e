package configure

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func checkErr(err error) {
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
}

// Defaults are the values applied before the config file, flags and env.
func Defaults() Config {
	cfg := Config{
		LogLevel:        "info",
		Config:          "config.yaml",
		OutputDir:       "out",
		WorkingDir:      "tmp",
		MaxTaskDuration: 300,
	}

	cfg.Sheet.Policy = "equal"
	cfg.Sheet.Padding = "0"
	cfg.Sheet.Align = "top"
	cfg.Sheet.Background = "#ffffff"
	cfg.Sheet.FrameSpeed = "150"
	cfg.Sheet.Zoom = 1
	cfg.Sheet.FileName = "spritesheet"

	return cfg
}

func New() *Config {
	return NewWithArgs(nil)
}

// NewWithArgs builds the config from an explicit argument list, or from
// os.Args when args is nil.
func NewWithArgs(args []string) *Config {
	config := viper.New()
	config.SetConfigType("yaml")

	b, err := json.Marshal(Defaults())

	checkErr(err)
	tmp := viper.New()
	tmp.SetConfigType("json")
	checkErr(tmp.ReadConfig(bytes.NewBuffer(b)))
	checkErr(config.MergeConfigMap(tmp.AllSettings()))

	flags := pflag.CommandLine
	if args != nil {
		flags = pflag.NewFlagSet("sprite", pflag.ContinueOnError)
	}

	flags.String("config", "config.yaml", "Config file location")
	flags.Bool("noheader", false, "Disable the startup header")
	flags.StringSlice("inputs", nil, "Image files to compose, in order")
	flags.String("output_dir", "out", "Folder the sheet is written to")
	flags.String("sheet.policy", "equal", "Layout policy: equal or packed")
	flags.String("sheet.padding", "0", "Padding in pixels")
	flags.String("sheet.align", "top", "Vertical alignment: top, center or bottom")
	flags.String("sheet.background", "#ffffff", "Background colour")
	flags.Bool("sheet.transparent", false, "Leave the background transparent")
	flags.Bool("sheet.grid", false, "Render the grid overlay on the display image")
	flags.String("sheet.frame_speed", "150", "Animation frame interval in ms")
	flags.Float64("sheet.zoom", 1, "Display zoom factor")
	flags.String("sheet.file_name", "spritesheet", "Output file name without extension")
	flags.Bool("sheet.preview", false, "Also write the animation preview as a gif")
	flags.Bool("sheet.display", false, "Also write the zoomed display image")

	if args != nil {
		checkErr(flags.Parse(args))
	} else {
		pflag.Parse()
	}
	checkErr(config.BindPFlags(flags))

	config.SetConfigFile(config.GetString("config"))
	if err := config.ReadInConfig(); err == nil {
		checkErr(config.MergeInConfig())
	}

	cfg := Config{}

	config.SetEnvPrefix("SPRITE")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)
	config.AutomaticEnv()

	checkErr(config.Unmarshal(&cfg))

	initLogging(cfg.LogLevel, cfg.NoLogs)

	return &cfg
}

type Sheet struct {
	Policy      string  `json:"policy,omitempty" mapstructure:"policy,omitempty"`
	Padding     string  `json:"padding,omitempty" mapstructure:"padding,omitempty"`
	Align       string  `json:"align,omitempty" mapstructure:"align,omitempty"`
	Background  string  `json:"background,omitempty" mapstructure:"background,omitempty"`
	Transparent bool    `json:"transparent,omitempty" mapstructure:"transparent,omitempty"`
	Grid        bool    `json:"grid,omitempty" mapstructure:"grid,omitempty"`
	FrameSpeed  string  `json:"frame_speed,omitempty" mapstructure:"frame_speed,omitempty"`
	Zoom        float64 `json:"zoom,omitempty" mapstructure:"zoom,omitempty"`
	FileName    string  `json:"file_name,omitempty" mapstructure:"file_name,omitempty"`
	Preview     bool    `json:"preview,omitempty" mapstructure:"preview,omitempty"`
	Display     bool    `json:"display,omitempty" mapstructure:"display,omitempty"`
}

type Config struct {
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level,omitempty"`
	Config   string `json:"config,omitempty" mapstructure:"config,omitempty"`
	NoHeader bool   `json:"noheader,omitempty" mapstructure:"noheader,omitempty"`
	NoLogs   bool   `json:"nologs,omitempty" mapstructure:"nologs,omitempty"`

	Inputs    []string `json:"inputs,omitempty" mapstructure:"inputs,omitempty"`
	OutputDir string   `json:"output_dir,omitempty" mapstructure:"output_dir,omitempty"`

	Sheet Sheet `json:"sheet,omitempty" mapstructure:"sheet,omitempty"`

	// Aws
	Aws struct {
		AccessToken string `json:"access_token,omitempty" mapstructure:"access_token,omitempty"`
		SecretKey   string `json:"secret_key,omitempty" mapstructure:"secret_key,omitempty"`
		Region      string `json:"region,omitempty" mapstructure:"region,omitempty"`
		Endpoint    string `json:"endpoint,omitempty" mapstructure:"endpoint,omitempty"`
	} `json:"aws,omitempty" mapstructure:"aws,omitempty"`

	Rmq struct {
		ServerURL       string `json:"server_url,omitempty" mapstructure:"server_url,omitempty"`
		JobQueueName    string `json:"job_queue_name,omitempty" mapstructure:"job_queue_name,omitempty"`
		ResultQueueName string `json:"result_queue_name,omitempty" mapstructure:"result_queue_name,omitempty"`
		UpdateQueueName string `json:"update_queue_name,omitempty" mapstructure:"update_queue_name,omitempty"`
	} `json:"rmq,omitempty" mapstructure:"rmq,omitempty"`

	WorkingDir      string `json:"working_dir,omitempty" mapstructure:"working_dir,omitempty"`
	MaxTaskDuration int    `json:"max_task_duration,omitempty" mapstructure:"max_task_duration,omitempty"`
}
