package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultPort = "1234"

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Seed   SeedConfig
	Feed   FeedConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	feed, err := loadFeedConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Seed: loadSeedConfig(), Feed: feed}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = defaultPort
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":1234" 或 "127.0.0.1:1234"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value %q: %w", port, err)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// SeedConfig 描述初始数据来源，File 为空时使用内置数据集。
type SeedConfig struct {
	File string
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{File: getEnvOrDefault("MOVIES_SEED_FILE", "")}
}

// FeedConfig 描述变更推送（WebSocket / SSE）配置。
type FeedConfig struct {
	Enabled bool
	Buffer  int
}

func loadFeedConfig() (FeedConfig, error) {
	enabled, err := parseBoolEnv("MOVIES_FEED_ENABLED", true)
	if err != nil {
		return FeedConfig{}, err
	}

	buffer := 16
	if override, err := parseOptionalIntEnv("MOVIES_FEED_BUFFER"); err != nil {
		return FeedConfig{}, err
	} else if override != nil {
		if *override < 1 {
			buffer = 1
		} else {
			buffer = *override
		}
	}

	return FeedConfig{Enabled: enabled, Buffer: buffer}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
