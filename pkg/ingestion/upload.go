// Copyright 2026 Greenleaf Labs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// persistUpload writes body to dir under a timestamped filename derived
// from name, and returns the path it was written to.
//
// Strategy mirrors the teacher's deterministic file-ID hashing: rather than
// hash the whole body (expensive for a 20MB spreadsheet), the stored name
// is "<unix-nano>-<hash-of-original-name>-<original-name>", which keeps the
// original extension intact for C2.load's extension dispatch. Uniqueness
// rests on the nanosecond timestamp: the hash depends only on the name, so
// two uploads of the same filename in the same nanosecond get the same
// stored name.
func persistUpload(dir, name string, body []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	stored := timestampedFilename(name, time.Now())
	path := filepath.Join(dir, stored)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, body, 0o644); err != nil {
		return "", fmt.Errorf("write upload temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename upload: %w", err)
	}

	return path, nil
}

// timestampedFilename builds the timestamped stored name for an upload.
func timestampedFilename(originalName string, at time.Time) string {
	hash := sha256.Sum256([]byte(originalName))
	shortHash := hex.EncodeToString(hash[:4])
	ext := filepath.Ext(originalName)
	base := originalName[:len(originalName)-len(ext)]
	return fmt.Sprintf("%d-%s-%s%s", at.UnixNano(), shortHash, base, ext)
}
