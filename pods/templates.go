package pods

import "github.com/danmuck/phantompods/runtimes"

// Template is an immutable pod blueprint. The catalog is compiled-in;
// no add/remove operation exists.
type Template struct {
	Name          string
	Description   string
	Icon          string
	Type          runtimes.Type
	Security      Security
	DefaultLimits Limits
}

var builtinTemplates = []Template{
	{
		Name:        "Linux Native",
		Description: "Run Linux applications with isolation",
		Icon:        "🐧",
		Type:        runtimes.TypeNative,
		Security:    SecurityStandard,
		DefaultLimits: Limits{
			CPUPercent: 50, MemoryMB: 1024, StorageMB: 2048,
			AllowGPU: true, AllowAudio: true, AllowDisplay: true,
		},
	},
	{
		Name:        "Windows (Wine)",
		Description: "Run Windows applications via Wine",
		Icon:        "🪟",
		Type:        runtimes.TypeWine,
		Security:    SecurityStandard,
		DefaultLimits: Limits{
			CPUPercent: 75, MemoryMB: 2048, StorageMB: 4096,
			AllowGPU: true, AllowAudio: true, AllowDisplay: true,
		},
	},
	{
		Name:        "Windows 64-bit",
		Description: "Run 64-bit Windows applications",
		Icon:        "🪟",
		Type:        runtimes.TypeWine64,
		Security:    SecurityStandard,
		DefaultLimits: Limits{
			CPUPercent: 75, MemoryMB: 4096, StorageMB: 8192,
			AllowGPU: true, AllowAudio: true, AllowDisplay: true,
		},
	},
	{
		Name:        "DOS Retro",
		Description: "Run classic DOS games and applications",
		Icon:        "👾",
		Type:        runtimes.TypeDOSBox,
		Security:    SecurityHigh,
		DefaultLimits: Limits{
			CPUPercent: 25, MemoryMB: 256, StorageMB: 512,
			AllowAudio: true, AllowDisplay: true,
		},
	},
	{
		Name:        "Flatpak Apps",
		Description: "Run Flatpak containerized applications",
		Icon:        "📦",
		Type:        runtimes.TypeFlatpak,
		Security:    SecurityStandard,
		DefaultLimits: Limits{
			CPUPercent: 50, MemoryMB: 2048, StorageMB: 4096,
			AllowGPU: true, AllowAudio: true, AllowUSB: true, AllowDisplay: true,
		},
	},
	{
		Name:        "AppImage Runner",
		Description: "Run portable AppImage applications",
		Icon:        "📀",
		Type:        runtimes.TypeAppImage,
		Security:    SecurityStandard,
		DefaultLimits: Limits{
			CPUPercent: 50, MemoryMB: 1024, StorageMB: 1024,
			AllowGPU: true, AllowAudio: true, AllowDisplay: true,
		},
	},
	{
		Name:        "Secure Sandbox",
		Description: "Maximum isolation for untrusted apps",
		Icon:        "🔒",
		Type:        runtimes.TypeNative,
		Security:    SecurityMaximum,
		DefaultLimits: Limits{
			CPUPercent: 25, MemoryMB: 512, StorageMB: 256,
			AllowDisplay: true,
		},
	},
	{
		Name:        "Developer Environment",
		Description: "Full-featured development container",
		Icon:        "💻",
		Type:        runtimes.TypeNative,
		Security:    SecurityRelaxed,
		DefaultLimits: Limits{
			CPUPercent: 100, MemoryMB: 8192, StorageMB: 16384,
			AllowGPU: true, AllowAudio: true, AllowUSB: true, AllowDisplay: true,
		},
	},
}

// Templates returns a copy of the built-in template catalog.
func Templates() []Template {
	return append([]Template(nil), builtinTemplates...)
}

// TemplateCount returns the number of built-in templates.
func TemplateCount() int {
	return len(builtinTemplates)
}

// FindTemplate returns the built-in template with the given name.
func FindTemplate(name string) (Template, bool) {
	for _, tmpl := range builtinTemplates {
		if tmpl.Name == name {
			return tmpl, true
		}
	}
	return Template{}, false
}
