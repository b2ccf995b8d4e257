package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
)

var builtinSeeds = []string{
	"",
	"<PLAYER_SETUP>\nrandom_placement\n",
	"#const N 3\n#REPEAT(N)\ncreate_land { base_size rnd(5,9) }\n#END_REPEAT\n",
	"#REPEAT(2)\n#REPEAT(2)\na\n#END_REPEAT\n#END_REPEAT",
	"#HEADER_START\nby someone\n#HEADER_END\nx",
	"create_actor_area 10 10 west 5\navoid_actor_area west\n",
	"#CIRCLE_LANDS(4, 10, 0)\n#SQUARE_LANDS(2)\n",
	"#EVERY_PLAYER\ncreate_object SCOUT { }\n",
	"a /* open",
	"\"unterminated\n",
	"#END_REPEAT\n#REPEAT(",
	"x\n#BREAK\ny rnd(1,2)",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.rms файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".rms" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
