package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Evolution EvolutionConfig
	Log       LogConfig
}

// EvolutionConfig holds the parameters of a genetic run
type EvolutionConfig struct {
	PopulationSize  int
	Generations     int
	SelectionFactor float64
	MutationChance  float64
	Elites          int
	Workers         int
	Seed            uint64
	Seeding         string
}

type LogConfig struct {
	Level  string
	Format string
}

// New returns a viper instance with defaults and TIMETABLE_ environment overrides
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TIMETABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the optional config file into v and builds the configuration
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Evolution: EvolutionConfig{
			PopulationSize:  v.GetInt("population_size"),
			Generations:     v.GetInt("generations"),
			SelectionFactor: v.GetFloat64("selection_factor"),
			MutationChance:  v.GetFloat64("mutation_chance"),
			Elites:          v.GetInt("elites"),
			Workers:         v.GetInt("workers"),
			Seed:            v.GetUint64("seed"),
			Seeding:         strings.ToLower(v.GetString("seeding")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) Validate() error {
	evolution := cfg.Evolution
	if evolution.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2: %v", evolution.PopulationSize)
	} else if evolution.Generations < 0 {
		return fmt.Errorf("generations must not be negative: %v", evolution.Generations)
	} else if evolution.SelectionFactor <= 0 || evolution.SelectionFactor > 1 {
		return fmt.Errorf("selection factor must lie in (0, 1]: %v", evolution.SelectionFactor)
	} else if evolution.MutationChance < 0 || evolution.MutationChance > 1 {
		return fmt.Errorf("mutation chance must lie in [0, 1]: %v", evolution.MutationChance)
	} else if evolution.Elites < 0 {
		return fmt.Errorf("elites must not be negative: %v", evolution.Elites)
	} else if evolution.Seeding != "random" && evolution.Seeding != "matched" {
		return fmt.Errorf("seeding must be \"random\" or \"matched\": %v", evolution.Seeding)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("population_size", 100)
	v.SetDefault("generations", 100)
	v.SetDefault("selection_factor", 0.2)
	v.SetDefault("mutation_chance", 0.01)
	v.SetDefault("elites", 0)
	v.SetDefault("workers", 0)
	v.SetDefault("seed", 0)
	v.SetDefault("seeding", "random")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
