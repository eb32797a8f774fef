package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
)

// Config 是服务的根配置。
// 策略拓扑是封闭集合（als / knn / latent），配置只驱动参数，不驱动拓扑。
type Config struct {
	Artifacts  Artifacts           `yaml:"artifacts"`
	Serving    Serving             `yaml:"serving"`
	Strategies map[string]Strategy `yaml:"strategies"`
}

// Artifacts 指定训练产物的数据源。
type Artifacts struct {
	// Source 数据源类型：file（默认）/ redis
	Source string `yaml:"source"`

	// Dir file 源的产物目录
	Dir string `yaml:"dir"`

	// RedisAddr / RedisDB / RedisPrefix redis 源的连接与 key 前缀
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// Serving 是服务层参数。
type Serving struct {
	// Addr HTTP 监听地址（cmd/recserved 使用）
	Addr string `yaml:"addr"`

	// DefaultTopK 请求未携带 k 时的默认条数
	DefaultTopK int `yaml:"default_top_k"`

	// ResultCacheTTL 结果缓存的过期秒数；0 表示关闭结果缓存
	ResultCacheTTL int `yaml:"result_cache_ttl"`

	// WarmUp 启动时是否预热全部策略（等价于对每个策略先 Get 一次）
	WarmUp bool `yaml:"warm_up"`
}

// Strategy 是单个策略家族的可调参数。
type Strategy struct {
	// MinScore 噪声分阈值；nil 取各策略默认（knn/als 为 0.00001，latent 关闭）
	MinScore *float64 `yaml:"min_score"`

	// SeenFilter 已交互过滤位置：model / engine / none；空取各策略默认
	SeenFilter string `yaml:"seen_filter"`

	// Neighbors 近邻数 k'（仅 knn 有效；0 取产物内的训练值）
	Neighbors int `yaml:"neighbors"`

	// Rules 业务规则过滤（CEL 表达式，返回 true 保留）
	Rules []string `yaml:"rules"`
}

// Default 返回零配置可用的默认值。
func Default() *Config {
	return &Config{
		Artifacts: Artifacts{Source: "file", Dir: "./data"},
		Serving:   Serving{Addr: ":8010", DefaultTopK: 10},
	}
}

// Load 读取并校验 YAML 配置文件。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("read config %s", path), err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("parse config %s", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置的静态合法性。
func (c *Config) Validate() error {
	switch c.Artifacts.Source {
	case "", "file", "redis":
	default:
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("unknown artifacts source %q", c.Artifacts.Source))
	}
	if c.Serving.DefaultTopK < 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("default_top_k must be >= 0, got %d", c.Serving.DefaultTopK))
	}
	for name, s := range c.Strategies {
		if _, ok := artifact.ParseKind(name); !ok {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
				fmt.Sprintf("unknown strategy %q", name))
		}
		switch s.SeenFilter {
		case "", "model", "engine", "none":
		default:
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
				fmt.Sprintf("strategy %s: unknown seen_filter %q", name, s.SeenFilter))
		}
		if s.Neighbors < 0 {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
				fmt.Sprintf("strategy %s: neighbors must be >= 0", name))
		}
	}
	return nil
}

// StrategyFor 返回某个家族的配置段（未配置时为零值）。
func (c *Config) StrategyFor(kind artifact.Kind) Strategy {
	if c.Strategies == nil {
		return Strategy{}
	}
	return c.Strategies[string(kind)]
}
