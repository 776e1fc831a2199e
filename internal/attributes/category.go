package attributes

import (
	"strings"

	"github.com/Alias1177/skinflip/models"
)

var titlePrefixes = []string{"★ ", "StatTrak™ ", "StatTrak ", "Souvenir "}

var wearSuffixes = []string{
	" (Factory New)", " (Minimal Wear)", " (Field-Tested)", " (Well-Worn)", " (Battle-Scarred)",
}

// BaseName strips the knife star, StatTrak/Souvenir prefixes and the exterior
// suffix, e.g. "StatTrak™ AK-47 | Redline (Field-Tested)" -> "AK-47 | Redline".
func BaseName(title string) string {
	name := strings.TrimSpace(title)
	for changed := true; changed; {
		changed = false
		for _, p := range titlePrefixes {
			if strings.HasPrefix(name, p) {
				name = strings.TrimPrefix(name, p)
				changed = true
			}
		}
	}
	for _, s := range wearSuffixes {
		if strings.HasSuffix(name, s) {
			name = strings.TrimSuffix(name, s)
			break
		}
	}
	return name
}

var weaponCategories = map[string]models.ItemCategory{
	"AK-47": models.CategoryRifle, "M4A4": models.CategoryRifle, "M4A1-S": models.CategoryRifle,
	"FAMAS": models.CategoryRifle, "Galil AR": models.CategoryRifle, "AUG": models.CategoryRifle,
	"SG 553": models.CategoryRifle,

	"AWP": models.CategorySniper, "SSG 08": models.CategorySniper, "SCAR-20": models.CategorySniper,
	"G3SG1": models.CategorySniper,

	"Glock-18": models.CategoryPistol, "USP-S": models.CategoryPistol, "P2000": models.CategoryPistol,
	"P250": models.CategoryPistol, "Desert Eagle": models.CategoryPistol, "Five-SeveN": models.CategoryPistol,
	"Tec-9": models.CategoryPistol, "CZ75-Auto": models.CategoryPistol, "Dual Berettas": models.CategoryPistol,
	"R8 Revolver": models.CategoryPistol,

	"MAC-10": models.CategorySMG, "MP9": models.CategorySMG, "MP7": models.CategorySMG,
	"MP5-SD": models.CategorySMG, "UMP-45": models.CategorySMG, "P90": models.CategorySMG,
	"PP-Bizon": models.CategorySMG,

	"Nova": models.CategoryHeavy, "XM1014": models.CategoryHeavy, "Sawed-Off": models.CategoryHeavy,
	"MAG-7": models.CategoryHeavy, "M249": models.CategoryHeavy, "Negev": models.CategoryHeavy,
}

var knifeNames = []string{
	"knife", "karambit", "bayonet", "daggers", "kukri",
}

var gloveNames = []string{"gloves", "hand wraps"}

var agentFactions = []string{
	"| SWAT", "| FBI", "| Phoenix", "| Sabre", "| Elite Crew", "| KSK", "| SAS",
	"| NSWC SEAL", "| Guerrilla Warfare", "| The Professionals", "| Gendarmerie Nationale",
	"| SEAL Frogman", "| USAF TACP", "| Brazilian 1st Battalion", "| TACP Cavalry",
}

// Categorize groups an item by its market title.
func Categorize(title string) models.ItemCategory {
	trimmed := strings.TrimSpace(title)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "sticker |"), strings.HasPrefix(lower, "sealed graffiti |"):
		return models.CategorySticker
	case !strings.Contains(trimmed, "|") &&
		(strings.HasSuffix(lower, " case") || strings.Contains(lower, "capsule") || strings.Contains(lower, "souvenir package")):
		return models.CategoryCase
	}

	for _, g := range gloveNames {
		if strings.Contains(lower, g) {
			return models.CategoryGloves
		}
	}

	base := BaseName(trimmed)
	weapon := base
	if i := strings.Index(base, " | "); i >= 0 {
		weapon = base[:i]
	}
	if cat, ok := weaponCategories[weapon]; ok {
		return cat
	}

	if strings.HasPrefix(trimmed, "★") {
		return models.CategoryKnife
	}
	lowerWeapon := strings.ToLower(weapon)
	for _, k := range knifeNames {
		if strings.Contains(lowerWeapon, k) {
			return models.CategoryKnife
		}
	}

	for _, f := range agentFactions {
		if strings.HasSuffix(trimmed, f) {
			return models.CategoryAgent
		}
	}
	return models.CategoryOther
}
