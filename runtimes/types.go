package runtimes

// Type identifies the compatibility runtime a pod executes through.
type Type int

const (
	TypeNative   Type = iota // native binaries with process isolation
	TypeWine                 // Windows applications via Wine
	TypeWine64               // 64-bit Windows applications via Wine64
	TypeDOSBox               // DOS applications via DOSBox
	TypeQEMU                 // full system emulation
	TypeFlatpak              // Flatpak container integration
	TypeAppImage             // portable AppImage execution
	TypeCustom               // user-defined launch command
)

// String returns the display name for the runtime type.
func (t Type) String() string {
	switch t {
	case TypeNative:
		return "Native Linux"
	case TypeWine:
		return "Wine (Windows)"
	case TypeWine64:
		return "Wine64 (Windows 64-bit)"
	case TypeDOSBox:
		return "DOSBox"
	case TypeQEMU:
		return "QEMU Emulation"
	case TypeFlatpak:
		return "Flatpak"
	case TypeAppImage:
		return "AppImage"
	case TypeCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is a known runtime type.
func (t Type) Valid() bool {
	return t >= TypeNative && t <= TypeCustom
}

// InstallHint returns remediation text for a missing runtime backend.
// Empty for types that have no external binary requirement.
func InstallHint(t Type) string {
	switch t {
	case TypeWine:
		return "install the Wine compatibility layer: sudo apt install wine"
	case TypeWine64:
		return "install the Wine64 compatibility layer: sudo apt install wine64"
	case TypeDOSBox:
		return "install DOSBox: sudo apt install dosbox"
	case TypeQEMU:
		return "install QEMU: sudo apt install qemu-system-x86"
	case TypeFlatpak:
		return "install Flatpak: sudo apt install flatpak"
	default:
		return ""
	}
}
