package app

import (
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/external"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/llm"
	configx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/config"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
	"github.com/tanpawarit/Chative-Personal-Assistant/pkg/tts"
)

type Config struct {
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8000"`
	ShutdownTimeout     time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ReadHeaderTimeout   time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	MaxRequestBodyBytes int64         `envconfig:"MAX_REQUEST_BODY_BYTES" default:"1048576"`
	DatabaseURL         string        `envconfig:"DATABASE_URL"`
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http addr is required", contractx.ErrValidation)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be > 0", contractx.ErrValidation)
	}
	return nil
}

// Settings gathers every config group read from the environment.
type Settings struct {
	App     Config
	LLM     llm.Config
	Weather external.WeatherConfig
	News    external.NewsConfig
	Speech  tts.Config
	Log     logx.Config
}

// LoadSettings reads each group under its own prefix: "" (app), LLM, OPENWEATHER,
// NEWS, ELEVENLABS and LOG.
func LoadSettings() (Settings, error) {
	var s Settings

	appConf, err := configx.New[Config]("")
	if err != nil {
		return s, err
	}
	llmConf, err := configx.New[llm.Config]("LLM")
	if err != nil {
		return s, err
	}
	weatherConf, err := configx.New[external.WeatherConfig]("OPENWEATHER")
	if err != nil {
		return s, err
	}
	newsConf, err := configx.New[external.NewsConfig]("NEWS")
	if err != nil {
		return s, err
	}
	speechConf, err := configx.New[tts.Config]("ELEVENLABS")
	if err != nil {
		return s, err
	}
	logConf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return s, err
	}

	return Settings{
		App:     *appConf,
		LLM:     *llmConf,
		Weather: *weatherConf,
		News:    *newsConf,
		Speech:  *speechConf,
		Log:     *logConf,
	}, nil
}
