// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package indexer_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/blinklabs-io/hdrcheck/internal/config"
	"github.com/blinklabs-io/hdrcheck/internal/indexer"
)

func TestRunFormats(t *testing.T) {
	testDefs := []struct {
		name   string
		format string
		input  func([]blockchain.BlockHeader) string
	}{
		{
			name:   "test-run-raw",
			format: config.HeadersFormatRaw,
			input: func(headers []blockchain.BlockHeader) string {
				var buf bytes.Buffer
				for _, header := range headers {
					buf.Write(header.Encode())
				}
				return buf.String()
			},
		},
		{
			name:   "test-run-hex",
			format: config.HeadersFormatHex,
			input: func(headers []blockchain.BlockHeader) string {
				var sb strings.Builder
				sb.WriteString("# test headers\n\n")
				for _, header := range headers {
					sb.WriteString(hex.EncodeToString(header.Encode()) + "\n")
				}
				return sb.String()
			},
		},
	}
	for _, td := range testDefs {
		net := testNetwork(td.name)
		idx, err := indexer.New(net, blockchain.NewMemoryStore())
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", td.name, err)
		}
		headers := testHeaders(net.Genesis, 10)
		input := strings.NewReader(td.input(headers))
		if err := idx.Run(context.Background(), input, td.format); err != nil {
			t.Fatalf("%s: unexpected error: %s", td.name, err)
		}
		if idx.Tip().Hash() != headers[9].Hash() {
			t.Fatalf("%s: did not get expected tip: got %s", td.name, idx.Tip())
		}
	}
}

func TestRunStopsAtRejectedHeader(t *testing.T) {
	net := testNetwork("test-run-rejected")
	idx, err := indexer.New(net, blockchain.NewMemoryStore())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	headers := testHeaders(net.Genesis, 3)
	bad := nextHeader(headers[2], 0x1c7fff80)
	headers = append(headers, bad, nextHeader(bad, 0x1c7fff80))
	var buf bytes.Buffer
	for _, header := range headers {
		buf.Write(header.Encode())
	}
	err = idx.Run(context.Background(), &buf, config.HeadersFormatRaw)
	if !errors.Is(err, blockchain.ErrInvalidDifficultyBits) {
		t.Fatalf("expected ErrInvalidDifficultyBits, got: %v", err)
	}
	if idx.Tip().Height != 3 {
		t.Fatalf("did not get expected tip height: got %d", idx.Tip().Height)
	}
}

func TestRunBadInput(t *testing.T) {
	net := testNetwork("test-run-bad-input")
	idx, err := indexer.New(net, blockchain.NewMemoryStore())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	headers := testHeaders(net.Genesis, 1)
	// Trailing partial header
	data := append(headers[0].Encode(), 0x01, 0x02, 0x03)
	if err := idx.Run(context.Background(), bytes.NewReader(data), config.HeadersFormatRaw); err == nil {
		t.Fatal("expected error for a partial header")
	}
	if err := idx.Run(context.Background(), strings.NewReader("zz\n"), config.HeadersFormatHex); err == nil {
		t.Fatal("expected error for invalid hex")
	}
	if err := idx.Run(context.Background(), strings.NewReader(""), "json"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Run(ctx, strings.NewReader(""), config.HeadersFormatRaw); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestRunBitcoinMainnet(t *testing.T) {
	// Bitcoin mainnet blocks 1 and 2
	input := strings.Join(
		[]string{
			"010000006fe28c0ab6f1b372c1a6a246ae63f74f931e8365e15a089c68d6190000000000982051fd1e4ba744bbbe680e1fee14677ba1a3c3540bf7b1cdb606e857233e0e61bc6649ffff001d01e36299",
			"010000004860eb18bf1b1620e37e9490fc8a427514416fd75159ab86688e9a8300000000d5fdcc541e25de1c7a5addedf24858b8bb665c9f36ef744ee42c316022c90f9bb0bc6649ffff001d08d2bd61",
		},
		"\n",
	)
	idx, err := indexer.New(blockchain.BitcoinMainnet, blockchain.NewMemoryStore())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := idx.Run(context.Background(), strings.NewReader(input), config.HeadersFormatHex); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expectedHash := "000000006a625f06636b8bb6ac7b960a8d03705d1ace08b1a19da3fdcc99ddbd"
	tip := idx.Tip()
	if tip.Height != 2 || tip.Hash().String() != expectedHash {
		t.Fatalf("did not get expected tip: got %s, wanted 2/%s", tip, expectedHash)
	}
}
