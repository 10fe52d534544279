package sender

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/openbuilders/jetton-sender/internal/errors"
)

// MnemonicWords is the only accepted seed-phrase length.
const MnemonicWords = 24

// LoadMnemonic reads a seed phrase from a file with one word per line.
// Surrounding whitespace is trimmed and blank lines are ignored; anything
// other than exactly 24 single words is a load error.
func LoadMnemonic(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, errors.New(errors.CodeLoad,
			fmt.Sprintf("couldn't read mnemonic file %q", path), err)
	}

	words := make([]string, 0, MnemonicWords)
	for _, line := range lines {
		if strings.ContainsAny(line, " \t") {
			return nil, errors.New(errors.CodeLoad,
				fmt.Sprintf("mnemonic file %q must have one word per line", path), nil)
		}
		words = append(words, line)
	}

	if len(words) != MnemonicWords {
		return nil, errors.New(errors.CodeLoad,
			fmt.Sprintf("mnemonic file %q has %d words, want %d",
				path, len(words), MnemonicWords), nil)
	}

	return words, nil
}

// LoadDestinations reads an ordered list of destination addresses, one per
// line. Lines are trimmed and blank lines are skipped; order and duplicates
// of the remaining lines are preserved exactly, since they determine the
// disbursement order and count. Addresses are not validated here, a malformed
// one fails at submission time.
func LoadDestinations(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, errors.New(errors.CodeLoad,
			fmt.Sprintf("couldn't read destination wallets file %q", path), err)
	}

	return lines, nil
}

// readLines returns the trimmed, non-empty lines of the file in order.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
