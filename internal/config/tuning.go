package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/zhouzirui/interview-partner/backend/internal/analysis/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/analysis/scoring"
)

// Tuning 汇总规则分类器与评分引擎的常量表，可由 TOML 文件部分覆盖。
type Tuning struct {
	Fallback persona.Rules   `toml:"fallback"`
	Scoring  scoring.Weights `toml:"scoring"`
}

// DefaultTuning 返回内置的常量表。
func DefaultTuning() Tuning {
	return Tuning{
		Fallback: persona.DefaultRules(),
		Scoring:  scoring.DefaultWeights(),
	}
}

// LoadTuning 读取 path 指向的 TOML 文件；未出现的键保留默认值。path 为空时直接返回默认值。
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	meta, err := toml.DecodeFile(path, &tuning)
	if err != nil {
		return Tuning{}, fmt.Errorf("invalid INTERVIEW_TUNING_FILE %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Tuning{}, fmt.Errorf("invalid INTERVIEW_TUNING_FILE %q: unknown keys %v", path, undecoded)
	}
	return tuning, nil
}
