package sdruntime

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrModelCorrupted is returned when a model file does not match its
// configured checksum.
var ErrModelCorrupted = errors.New("sdruntime: model file is corrupted or invalid")

// VerifyModelChecksum compares the SHA256 of modelPath against expected.
// An empty expected checksum skips the check.
func VerifyModelChecksum(modelPath, expected string) error {
	if expected == "" {
		return nil
	}

	actual, err := CalculateChecksum(modelPath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrModelCorrupted, expected, actual)
	}
	return nil
}

// CalculateChecksum streams a file through SHA256 and returns the lowercase
// hex digest. Model files are several gigabytes, so nothing is buffered
// beyond io.Copy's internal chunk.
func CalculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrModelNotFound, filePath)
		}
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
