package logger

import (
	"fmt"
	"strings"

	"github.com/ncobase/recruit/logging/logger/config"
	"github.com/sirupsen/logrus"
)

// Desensitizer masks sensitive values in log fields
type Desensitizer struct {
	config *config.Desensitization
	fields map[string]struct{}
}

// NewDesensitizer creates a new desensitizer instance
func NewDesensitizer(cfg *config.Desensitization) *Desensitizer {
	d := &Desensitizer{config: cfg, fields: make(map[string]struct{}, len(cfg.SensitiveFields))}
	for _, f := range cfg.SensitiveFields {
		d.fields[strings.ToLower(f)] = struct{}{}
	}
	return d
}

// Levels implements logrus.Hook
func (d *Desensitizer) Levels() []logrus.Level { return logrus.AllLevels }

// Fire implements logrus.Hook
func (d *Desensitizer) Fire(entry *logrus.Entry) error {
	if !d.config.Enabled || len(entry.Data) == 0 {
		return nil
	}
	entry.Data = d.DesensitizeFields(entry.Data)
	return nil
}

// DesensitizeFields returns a copy of fields with sensitive values masked
func (d *Desensitizer) DesensitizeFields(fields logrus.Fields) logrus.Fields {
	result := make(logrus.Fields, len(fields))
	for key, value := range fields {
		if d.isSensitiveField(key) && value != nil {
			result[key] = d.maskString(fmt.Sprint(value))
			continue
		}
		result[key] = value
	}
	return result
}

func (d *Desensitizer) isSensitiveField(name string) bool {
	_, ok := d.fields[strings.ToLower(name)]
	return ok
}

func (d *Desensitizer) maskString(str string) string {
	keep := d.config.PreservePrefix
	if keep < 0 || keep >= len(str) {
		keep = 0
	}
	masked := len(str) - keep
	if masked > 8 {
		masked = 8
	}
	return str[:keep] + strings.Repeat(d.config.MaskChar, masked)
}
