package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfString(t *testing.T) {
	require.Equal(t, "{log: {level: trace}}", string(parseConfString("log.level=trace")))
	require.Equal(t, "{camera: {cameras: {studio: {host: 10.0.0.5}}}}",
		string(parseConfString("camera.cameras.studio.host=10.0.0.5")))
	require.Nil(t, parseConfString("camctl.yaml"))
	require.Nil(t, parseConfString("level=trace"))
}

func TestInitConfig(t *testing.T) {
	prevConfigs, prevPath := configs, ConfigPath
	t.Cleanup(func() {
		configs, ConfigPath = prevConfigs, prevPath
	})
	configs, ConfigPath = nil, ""

	t.Setenv("CAMCTL_TEST_PASSWORD", "pass1")

	path := filepath.Join(t.TempDir(), "camctl.yaml")
	data := "camera:\n  cameras:\n    studio:\n      host: 10.0.0.5\n      password: ${CAMCTL_TEST_PASSWORD}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	initConfig(flagConfig{
		path,
		"camera.timeout=3s",
		`{visca: {port: 52381}}`,
	})

	require.Equal(t, path, ConfigPath)

	var cfg struct {
		Camera struct {
			Timeout string                       `yaml:"timeout"`
			Cameras map[string]map[string]string `yaml:"cameras"`
		} `yaml:"camera"`
		Visca struct {
			Port int `yaml:"port"`
		} `yaml:"visca"`
	}
	LoadConfig(&cfg)

	require.Equal(t, "10.0.0.5", cfg.Camera.Cameras["studio"]["host"])
	require.Equal(t, "pass1", cfg.Camera.Cameras["studio"]["password"])
	require.Equal(t, "3s", cfg.Camera.Timeout)
	require.Equal(t, 52381, cfg.Visca.Port)
}
