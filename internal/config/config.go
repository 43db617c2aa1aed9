package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix = "CAREERPILOT"

	defaultDataDir        = "data"
	defaultDocumentsDir   = "documents"
	defaultLettersDir     = "cover_letters"
	defaultScratchpadFile = "agent_scratchpad.txt"
	defaultModel          = "gemini-2.5-flash"
	defaultAgentName      = "career_assistant"
	defaultUsageLimit     = 100
	defaultLogLevel       = "info"
)

// Data file names inside the data directory. The trackers own these
// collections exclusively; nothing else reads or writes them.
const (
	applicationsFile  = "job_applications.json"
	coldEmailsFile    = "cold_emails.json"
	opportunitiesFile = "job_opportunities.json"
	usageFile         = "serpapi_usage.json"
)

// Config captures runtime configuration for the agent and CLI.
type Config struct {
	GoogleAPIKey  string
	SerpAPIKey    string
	DataDir       string
	DocumentsDir  string
	LettersDir    string
	Scratchpad    string
	Model         string
	AgentName     string
	CandidateName string
	UsageLimit    int
	LogLevel      string
}

// NewViper returns a viper instance with defaults and env bindings applied.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings. The API keys bind to
// their conventional unprefixed names; everything else reads CAREERPILOT_*.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("google.api_key", "GOOGLE_API_KEY")
	_ = v.BindEnv("serpapi.api_key", "SERPAPI_API_KEY")

	v.SetDefault("data.dir", defaultDataDir)
	v.SetDefault("documents.dir", defaultDocumentsDir)
	v.SetDefault("letters.dir", defaultLettersDir)
	v.SetDefault("scratchpad.path", defaultScratchpadFile)
	v.SetDefault("model.name", defaultModel)
	v.SetDefault("agent.name", defaultAgentName)
	v.SetDefault("candidate.name", "")
	v.SetDefault("usage.monthly_limit", defaultUsageLimit)
	v.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		GoogleAPIKey:  v.GetString("google.api_key"),
		SerpAPIKey:    v.GetString("serpapi.api_key"),
		DataDir:       v.GetString("data.dir"),
		DocumentsDir:  v.GetString("documents.dir"),
		LettersDir:    v.GetString("letters.dir"),
		Scratchpad:    v.GetString("scratchpad.path"),
		Model:         v.GetString("model.name"),
		AgentName:     v.GetString("agent.name"),
		CandidateName: v.GetString("candidate.name"),
		UsageLimit:    v.GetInt("usage.monthly_limit"),
		LogLevel:      v.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data.dir is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.UsageLimit <= 0 {
		return fmt.Errorf("usage.monthly_limit must be positive, got %d", c.UsageLimit)
	}
	return nil
}

// RequireGoogleKey fails commands that talk to the LLM. Data-plane commands
// (usage, graph, portfolio) run without it.
func (c Config) RequireGoogleKey() error {
	if strings.TrimSpace(c.GoogleAPIKey) == "" {
		return fmt.Errorf("GOOGLE_API_KEY is not set")
	}
	return nil
}

// RequireSerpKey fails commands that call the search API.
func (c Config) RequireSerpKey() error {
	if strings.TrimSpace(c.SerpAPIKey) == "" {
		return fmt.Errorf("SERPAPI_API_KEY is not set")
	}
	return nil
}

// ApplicationsPath is the job application collection file.
func (c Config) ApplicationsPath() string {
	return filepath.Join(c.DataDir, applicationsFile)
}

// ColdEmailsPath is the outreach collection file.
func (c Config) ColdEmailsPath() string {
	return filepath.Join(c.DataDir, coldEmailsFile)
}

// OpportunitiesPath is the discovered-opportunity collection file.
func (c Config) OpportunitiesPath() string {
	return filepath.Join(c.DataDir, opportunitiesFile)
}

// UsagePath is the search usage ledger file.
func (c Config) UsagePath() string {
	return filepath.Join(c.DataDir, usageFile)
}
