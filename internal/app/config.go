package app

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
	"github.com/yohannreimer/projeto-treinamentos/internal/utils"
)

type Config struct {
	Port         string
	JWTSecretKey string
	TokenTTL     time.Duration

	// InstallationCodes lists the catalog codes that identify the
	// installation module, in preference order.
	InstallationCodes []string
	CORSOrigins       []string

	BootstrapEmail    string
	BootstrapName     string
	BootstrapPassword string

	// Seed is optional startup data applied through the bootstrap service.
	Seed *services.BootstrapInput
}

type fileConfig struct {
	InstallationCodes []string `yaml:"installation_codes"`
	CORSOrigins       []string `yaml:"cors_origins"`
	BootstrapUser     struct {
		Email    string `yaml:"email"`
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
	} `yaml:"bootstrap_user"`
	Seed *struct {
		Clients []string `yaml:"clients"`
		Modules []struct {
			Code         string  `yaml:"code"`
			Category     string  `yaml:"category"`
			Name         string  `yaml:"name"`
			Description  *string `yaml:"description"`
			DurationDays int     `yaml:"duration_days"`
			Profile      *string `yaml:"profile"`
			IsMandatory  bool    `yaml:"is_mandatory"`
		} `yaml:"modules"`
	} `yaml:"seed"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:              utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:      utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		TokenTTL:          time.Duration(utils.GetEnvAsInt("TOKEN_TTL", 86400, log)) * time.Second,
		InstallationCodes: []string{"960001010"},
		BootstrapEmail:    utils.GetEnv("BOOTSTRAP_EMAIL", "", log),
		BootstrapName:     utils.GetEnv("BOOTSTRAP_NAME", "Operador", log),
		BootstrapPassword: utils.GetEnv("BOOTSTRAP_PASSWORD", "", log),
	}

	if raw := utils.GetEnv("INSTALLATION_CODES", "", log); raw != "" {
		cfg.InstallationCodes = splitCSV(raw)
	}
	if raw := utils.GetEnv("CORS_ORIGINS", "", log); raw != "" {
		cfg.CORSOrigins = splitCSV(raw)
	}

	applyConfigFile(&cfg, utils.GetEnv("CONFIG_FILE", "config.yaml", log), log)
	return cfg
}

// applyConfigFile layers an optional YAML file under the env settings. Env
// values win; a missing file is not an error.
func applyConfigFile(cfg *Config, path string, log *logger.Logger) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Could not read config file", "path", path, "error", err)
		}
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		log.Warn("Could not parse config file", "path", path, "error", err)
		return
	}
	if len(fc.InstallationCodes) > 0 && os.Getenv("INSTALLATION_CODES") == "" {
		cfg.InstallationCodes = fc.InstallationCodes
	}
	if len(fc.CORSOrigins) > 0 && len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	if cfg.BootstrapEmail == "" {
		cfg.BootstrapEmail = fc.BootstrapUser.Email
		if fc.BootstrapUser.Name != "" {
			cfg.BootstrapName = fc.BootstrapUser.Name
		}
		cfg.BootstrapPassword = fc.BootstrapUser.Password
	}
	if fc.Seed != nil {
		seed := &services.BootstrapInput{Clients: fc.Seed.Clients}
		for _, m := range fc.Seed.Modules {
			seed.Modules = append(seed.Modules, services.ModuleSeed{
				Code:         m.Code,
				Category:     m.Category,
				Name:         m.Name,
				Description:  m.Description,
				DurationDays: m.DurationDays,
				Profile:      m.Profile,
				IsMandatory:  m.IsMandatory,
			})
		}
		cfg.Seed = seed
	}
	log.Info("Loaded config file", "path", path)
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
