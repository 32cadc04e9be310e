package job

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Job is one compose request: the sources in sheet order, the sheet settings,
// optional edit commands and where the results go.
type Job struct {
	ID string `json:"id"`

	Sources  []Source  `json:"sources"`
	Settings Settings  `json:"settings"`
	Commands []Command `json:"commands"`

	ResultConsumer        ResultConsumer      `json:"result_consumer"`
	ResultConsumerDetails jsoniter.RawMessage `json:"result_consumer_details"`
}

type Source struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	// OffsetX is free-form like the rest of the user input.
	OffsetX string `json:"offset_x"`

	RawProvider        RawProvider         `json:"raw_provider"`
	RawProviderDetails jsoniter.RawMessage `json:"raw_provider_details"`
}

// Settings mirror the sheet controls. Text fields are parsed leniently.
type Settings struct {
	Policy      string  `json:"policy"`
	Padding     string  `json:"padding"`
	Align       string  `json:"align"`
	Background  string  `json:"background"`
	Transparent bool    `json:"transparent"`
	Grid        bool    `json:"grid"`
	FrameSpeed  string  `json:"frame_speed"`
	Zoom        float64 `json:"zoom"`
	FileName    string  `json:"file_name"`

	// Preview also writes the animation preview as a gif.
	Preview bool `json:"preview"`
	// Display also writes the zoomed sheet with the grid overlay.
	Display bool `json:"display"`
}

type CommandOp string

const (
	RemoveCommand  CommandOp = "remove"
	ReorderCommand CommandOp = "reorder"
	OffsetCommand  CommandOp = "offset"
	ClearCommand   CommandOp = "clear"
	ToggleCommand  CommandOp = "toggle"
	ZoomInCommand  CommandOp = "zoom_in"
	ZoomOutCommand CommandOp = "zoom_out"
)

// Command edits the collection after loading. Index and Target refer to
// positions in Sources.
type Command struct {
	Op     CommandOp `json:"op"`
	Index  int       `json:"index"`
	Target int       `json:"target"`
	Value  string    `json:"value"`
}

type File struct {
	Name        string        `json:"name"`
	Size        int           `json:"size"`
	ContentType string        `json:"content_type"`
	Animated    bool          `json:"animated"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Checksum    string        `json:"checksum"`
	Location    string        `json:"location"`
	TimeTaken   time.Duration `json:"time_taken"`
}

type RawProviderDetailsAws struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type RawProviderDetailsLocal struct {
	Path string `json:"path"`
}

type ResultConsumerDetailsAws struct {
	Bucket    string `json:"bucket"`
	KeyFolder string `json:"key_folder"`
}

type ResultConsumerDetailsLocal struct {
	PathFolder string `json:"path_folder"`
}

type RawProvider string

const (
	AwsProvider   RawProvider = "aws"
	LocalProvider RawProvider = "local"
)

type ResultConsumer string

const (
	AwsConsumer   ResultConsumer = "aws"
	LocalConsumer ResultConsumer = "local"
)
