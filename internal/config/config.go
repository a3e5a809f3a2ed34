package config

import (
	"fmt"
	"os"

	"nico-interface-sol/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana RPC 节点配置
type RpcConfig struct {
	Endpoint  string `yaml:"endpoint"`   // RPC 地址，例如 https://api.mainnet-beta.solana.com
	TimeoutMs int    `yaml:"timeout_ms"` // 单次 GetMultipleAccounts 超时（毫秒）
}

// RedisConfig 账户快照缓存配置
type RedisConfig struct {
	Addr      string `yaml:"addr"`       // Redis 地址，为空表示不启用缓存
	DB        int    `yaml:"db"`         // Redis DB 编号
	TTLSec    int    `yaml:"ttl_sec"`    // 快照缓存 TTL（秒）
	KeyPrefix string `yaml:"key_prefix"` // key 前缀
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers    string `yaml:"brokers"`    // Kafka broker 地址，多个用英文逗号分隔；为空表示不发送
	BatchSize  int    `yaml:"batch_size"` // 批处理大小（单位字节）
	LingerMs   int    `yaml:"linger_ms"`  // 批处理最大延迟（毫秒）
	Topic      string `yaml:"topic"`      // 资产识别记录 topic
	Partitions int    `yaml:"partitions"` // topic 分区数
}

// ReplayConfig 资产识别回放服务配置
type ReplayConfig struct {
	IntervalSec   int      `yaml:"interval_sec"`    // 两轮回放之间的间隔（秒）
	Assets        []string `yaml:"assets"`          // 需要持续识别的资产地址（base58）
	SendTimeoutMs int      `yaml:"send_timeout_ms"` // 单条记录发送到 Kafka 并等待 ack 的超时时间
}

// Config 是主配置结构体
type Config struct {
	LogConf           LogConfig           `yaml:"logger"`         // 日志配置
	RpcConf           RpcConfig           `yaml:"rpc"`            // RPC 配置
	RedisConf         RedisConfig         `yaml:"redis"`          // 快照缓存配置
	KafkaProducerConf KafkaProducerConfig `yaml:"kafka_producer"` // Kafka 生产者配置
	ReplayConf        ReplayConfig        `yaml:"replay"`         // 回放服务配置
}

// Load 读取并解析 yaml 配置文件，同时补齐默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	if c.RpcConf.Endpoint == "" {
		return nil, fmt.Errorf("config %s: rpc.endpoint is required", path)
	}
	return &c, nil
}

// MustLoad 同 Load，失败直接 panic（仅用于 main 启动阶段）
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Config) applyDefaults() {
	if c.RpcConf.TimeoutMs <= 0 {
		c.RpcConf.TimeoutMs = 5000
	}
	if c.RedisConf.TTLSec <= 0 {
		c.RedisConf.TTLSec = 30
	}
	if c.RedisConf.KeyPrefix == "" {
		c.RedisConf.KeyPrefix = "nico:snapshot"
	}
	if c.KafkaProducerConf.Topic == "" {
		c.KafkaProducerConf.Topic = "nico-asset"
	}
	if c.KafkaProducerConf.Partitions <= 0 {
		c.KafkaProducerConf.Partitions = 1
	}
	if c.ReplayConf.IntervalSec <= 0 {
		c.ReplayConf.IntervalSec = 60
	}
	if c.ReplayConf.SendTimeoutMs <= 0 {
		c.ReplayConf.SendTimeoutMs = 3000
	}
}
