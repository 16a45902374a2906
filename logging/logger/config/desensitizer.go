package config

import "github.com/spf13/viper"

// Desensitization holds desensitization settings
type Desensitization struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	SensitiveFields []string `json:"sensitive_fields" yaml:"sensitive_fields"`
	PreservePrefix  int      `json:"preserve_prefix" yaml:"preserve_prefix"`
	MaskChar        string   `json:"mask_char" yaml:"mask_char"`
}

// Invitation tokens are bearer credentials and candidate emails are personal
// data; neither may reach log sinks in clear.
var defaultSensitiveFields = []string{
	"password", "secret", "api_key",
	"token", "access_token", "authorization", "signature",
	"email", "candidate_email",
}

const defaultMaskChar = "*"

// getDesensitizationConfigs reads and returns desensitization configuration
func getDesensitizationConfigs(v *viper.Viper) *Desensitization {
	if !v.IsSet("logger.desensitization") {
		return &Desensitization{
			Enabled:         true,
			SensitiveFields: defaultSensitiveFields,
			PreservePrefix:  4,
			MaskChar:        defaultMaskChar,
		}
	}

	config := &Desensitization{
		Enabled:         v.GetBool("logger.desensitization.enabled"),
		SensitiveFields: v.GetStringSlice("logger.desensitization.sensitive_fields"),
		PreservePrefix:  v.GetInt("logger.desensitization.preserve_prefix"),
		MaskChar:        v.GetString("logger.desensitization.mask_char"),
	}
	if len(config.SensitiveFields) == 0 {
		config.SensitiveFields = defaultSensitiveFields
	}
	if config.MaskChar == "" {
		config.MaskChar = defaultMaskChar
	}
	return config
}
