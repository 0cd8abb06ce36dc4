package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	scriptDir = "script/"
	iconDir   = "icons/"

	// DefaultScript is the script bundled with the player.
	DefaultScript = "script.yaml"
)

//go:embed script/*.yaml
var scriptFS embed.FS

//go:embed icons/*.svg
var iconFS embed.FS

var iconCache sync.Map

// Script returns the raw bytes of an embedded script file.
func Script(fileName string) ([]byte, error) {
	data, err := scriptFS.ReadFile(scriptDir + fileName)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", fileName, err)
	}
	return data, nil
}

// Icon returns a Fyne resource for the given icon file.
func Icon(fileName string) (fyne.Resource, error) {
	path := iconDir + fileName
	if cached, ok := iconCache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := iconFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load icon %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(fileName, data)
	iconCache.Store(path, resource)
	return resource, nil
}

// MustIcon returns a Fyne resource or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}
