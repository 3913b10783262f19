package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Package config provides configuration management for the Lumen background service

// Config struct to hold all configuration data
type Config struct {
	ListenAddr   string `json:"listen_addr"`
	ProxyBaseURL string `json:"proxy_base_url"`
	FavoritesURL string `json:"favorites_url"`
}

var (
	instance *Config
	once     sync.Once
)

// GetConfig returns the singleton instance of Config.
func GetConfig() *Config {
	once.Do(func() {
		instance = &Config{}
		// Load config from file
		if err := instance.loadFromFile(GetFilename()); err != nil {
			// Handle error, e.g., log, use defaults
			fmt.Println("Error loading config:", err)
			instance.setDefaultValues()
		}
		instance.fillMissingValues()
	})
	return instance
}

// GetFilename returns the path to the user's config file
func GetFilename() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Error getting user home directory: %v", err)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName), "config.json")
}

// GetPath returns the path to the user's config directory
func GetPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Error getting user home directory: %v", err)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName))
}

// GetWorkingDir returns the directory used for runtime artifacts (logs, caches).
func GetWorkingDir() string {
	return GetPath()
}

// loadFromFile loads configuration from the specified file
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err // Return the error for handling in GetConfig()
	}

	return json.Unmarshal(data, c)
}

// setDefaultValues resets the config to its built-in defaults.
func (c *Config) setDefaultValues() {
	c.ListenAddr = DefaultListenAddr
	c.ProxyBaseURL = DefaultProxyBaseURL
	c.FavoritesURL = DefaultFavoritesURL
}

// fillMissingValues backfills any field the user's file left empty.
func (c *Config) fillMissingValues() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.ProxyBaseURL == "" {
		c.ProxyBaseURL = DefaultProxyBaseURL
	}
	if c.FavoritesURL == "" {
		c.FavoritesURL = DefaultFavoritesURL
	}
}

// Save writes the configuration back to the user's config file.
func (c *Config) Save() error {
	if err := os.MkdirAll(GetPath(), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(GetFilename(), data, 0644)
}
