// Command validate provides a small CLI that validates puzzle preset JSON
// files in the presets directory. It checks:
//   - JSON structure and required fields
//   - Board size bounds (3-5 per side)
//   - Time and pixel settings (positive seconds per tile, sane board cap)
//   - Shuffle sanity: boards generated for the preset's size are solvable
//     and never start out already solved
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/nmarchi/slidepuzzle/game/engine"
)

// shuffleTrials is how many sample boards the shuffle sanity check generates.
const shuffleTrials = 50

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePresetFile loads and validates a single preset JSON file. It
// performs structural checks and then samples shuffles for the preset's
// board size.
func validatePresetFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var preset engine.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidatePreset(&preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Shuffle sanity: every generated board must be solvable and unsolved.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < shuffleTrials; i++ {
		board := engine.Shuffle(preset.BoardSize, rng)
		if engine.IsSolved(board) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Shuffle trial %d produced an already-solved board", i+1))
			break
		}
		if !isSolvable(board, preset.BoardSize) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Shuffle trial %d produced an unsolvable board: %v", i+1, board))
			break
		}
	}

	// Add informational data
	if result.Valid {
		limit := preset.BoardSize * preset.BoardSize * preset.SecondsPerTile
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", preset.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", preset.BoardSize, preset.BoardSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Time limit: %ds (%ds per tile)", limit, preset.SecondsPerTile))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Max board pixels: %d", preset.MaxBoardPixels))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Shuffle sanity: %d solvable boards", shuffleTrials))
	}

	return result
}

// inversionCount counts tile pairs that are out of order, ignoring the empty
// slot.
func inversionCount(b engine.Board) int {
	inversions := 0
	for i := 0; i < len(b); i++ {
		if b[i] == engine.EmptySlot {
			continue
		}
		for j := i + 1; j < len(b); j++ {
			if b[j] != engine.EmptySlot && b[j] < b[i] {
				inversions++
			}
		}
	}
	return inversions
}

// isSolvable applies the classic inversion-parity rule: on odd widths the
// inversion count must be even; on even widths the inversion count plus the
// empty slot's row counted from the bottom (1-based) must be odd.
func isSolvable(b engine.Board, size int) bool {
	inversions := inversionCount(b)
	if size%2 == 1 {
		return inversions%2 == 0
	}
	emptyRowFromBottom := size - b.EmptyIndex()/size
	return (inversions+emptyRowFromBottom)%2 == 1
}

// main scans the presets directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	presetDir := "presets"
	if len(os.Args) > 1 {
		presetDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(presetDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No preset files found in %s\n", presetDir)
		return
	}

	allValid := true
	for _, file := range files {
		result := validatePresetFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
