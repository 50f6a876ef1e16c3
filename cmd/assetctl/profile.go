package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:3000"

// Profile 保存终端会话，登录后 token 会写回到文件中
type Profile struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token,omitempty"`
}

func defaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "asset-tracker", "profile.yaml"), nil
}

// loadProfile 在文件不存在时返回默认配置
func loadProfile(path string) (*Profile, error) {
	profile := &Profile{BaseURL: defaultBaseURL}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return profile, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("无法解析 %s: %w", path, err)
	}
	if profile.BaseURL == "" {
		profile.BaseURL = defaultBaseURL
	}
	return profile, nil
}

func saveProfile(path string, profile *Profile) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	// token 等同于密码，只允许当前用户读取
	return os.WriteFile(path, data, 0o600)
}
