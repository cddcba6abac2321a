// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package indexer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/blinklabs-io/hdrcheck/internal/config"
)

// Log progress every this many headers
const progressInterval = 10000

type headerReadFunc func() (*blockchain.BlockHeader, error)

// Run processes headers from r in order until the end of the input. It
// stops at the first header that cannot be read or is rejected.
func (i *Indexer) Run(ctx context.Context, r io.Reader, format string) error {
	readHeader, err := newHeaderReader(r, format)
	if err != nil {
		return err
	}
	var count int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := readHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read header %d: %w", count, err)
		}
		if _, err := i.HandleHeader(*header); err != nil {
			return err
		}
		count++
		if count%progressInterval == 0 {
			i.logger.Infof("processed %d headers, tip %s", count, i.tip)
		}
	}
	i.logger.Infof("finished processing %d headers, tip %s", count, i.tip)
	return nil
}

func newHeaderReader(r io.Reader, format string) (headerReadFunc, error) {
	switch format {
	case config.HeadersFormatRaw, "":
		br := bufio.NewReader(r)
		return func() (*blockchain.BlockHeader, error) {
			return blockchain.NewBlockHeaderFromReader(br)
		}, nil
	case config.HeadersFormatHex:
		scanner := bufio.NewScanner(r)
		return func() (*blockchain.BlockHeader, error) {
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				// Skip blank lines and comments
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				return blockchain.NewBlockHeaderFromHex(line)
			}
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}, nil
	default:
		return nil, fmt.Errorf("unknown headers format: %s", format)
	}
}
