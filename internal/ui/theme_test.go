package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Festive" || names[1] != "Midnight" || names[2] != "Candy Cane" {
		t.Fatalf("ThemeNames() = %v", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Festive"); got != "Midnight" {
		t.Fatalf("NextTheme(Festive) = %q, want Midnight", got)
	}
	if got := NextTheme("Candy Cane"); got != "Festive" {
		t.Fatalf("NextTheme(Candy Cane) = %q, want Festive", got)
	}
	if got := NextTheme("Unknown"); got != "Festive" {
		t.Fatalf("NextTheme(Unknown) = %q, want Festive", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Midnight"); got.Name != "Midnight" {
		t.Fatalf("GetTheme(Midnight).Name = %q", got.Name)
	}
	if got := GetTheme("Dracula"); got.Name != "Festive" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Festive (fallback)", got.Name)
	}
}

func TestThemesDefineEveryColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for field, value := range map[string]string{
			"Background": th.Background, "Surface": th.Surface, "SurfaceAlt": th.SurfaceAlt,
			"Text": th.Text, "Accent": th.Accent, "Snow": th.Snow, "Image": th.Image,
			"Danger": th.Danger, "Success": th.Success,
		} {
			if value == "" {
				t.Fatalf("theme %s: %s is empty", name, field)
			}
		}
	}
}
