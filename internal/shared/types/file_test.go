package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArch(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"x64 appx", "Microsoft.VCLibs.140.00_14.0.33519.0_x64__8wekyb3d8bbwe.appx", "x64"},
		{"arm64 upper case", "Microsoft.UI.Xaml.2.8_8.2310.30001.0_ARM64__8wekyb3d8bbwe.appx", "arm64"},
		{"neutral", "Contoso.App_1.0.0.0_neutral_~_abcdefghijklm.msix", "neutral"},
		{"bundle has no arch", "Microsoft.WindowsTerminal_1.21.2361.0_8wekyb3d8bbwe.msixbundle", ""},
		{"too few fields", "setup.exe", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArch(tt.file))
		})
	}
}

func TestFileDescriptorHelpers(t *testing.T) {
	file := FileDescriptor{Name: "Contoso.App_1.0.0.0_x86__abc.BlockMap"}

	assert.Equal(t, ".blockmap", file.Extension())
	assert.Equal(t, "x86", file.Arch())
	assert.True(t, file.IsBlockMap())

	file.Name = "Contoso.App_1.0.0.0_x86__abc.Appx"
	assert.Equal(t, ".appx", file.Extension())
	assert.False(t, file.IsBlockMap())
}

func TestIsArch(t *testing.T) {
	assert.True(t, IsArch("x64"))
	assert.True(t, IsArch("ARM64"))
	assert.False(t, IsArch("sparc"))
	assert.False(t, IsArch(""))
}

func TestIsPackageFile(t *testing.T) {
	assert.True(t, IsPackageFile("Contoso.App_1.0.0.0_x64__abc.msix"))
	assert.True(t, IsPackageFile("Contoso.App_1.0.0.0_abc.EAppxBundle"))
	assert.False(t, IsPackageFile("Contoso.App_1.0.0.0_x64__abc.blockmap"))
	assert.False(t, IsPackageFile("notes.txt"))

	assert.True(t, FileDescriptor{Name: "a_1_x86__p.appx"}.IsPackage())
	assert.False(t, FileDescriptor{Name: "a_1_x86__p.BlockMap"}.IsPackage())
}
