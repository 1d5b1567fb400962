// Command export prints the decrypted transcript of one archived ticket as
// JSON on stdout. The encryption passphrase comes from configuration or an
// interactive prompt.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/ticketvault/ticketvault/internal/archive/archiver"
	"github.com/ticketvault/ticketvault/internal/archive/config"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/repomanager"
	"github.com/ticketvault/ticketvault/internal/archive/services"
	"github.com/ticketvault/ticketvault/internal/common"
	"github.com/ticketvault/ticketvault/internal/flagx"
	"github.com/ticketvault/ticketvault/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()

	args := flagx.FilterArgs(os.Args[1:], []string{"-i"})
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	ticketID := fs.String("i", "", "ticket id to export")
	_ = fs.Parse(args)

	if *ticketID == "" {
		log.Fatal("ticket id is required (-i)")
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	passphrase := []byte(cfg.EncryptionPassphrase)
	if len(passphrase) == 0 {
		p, err := readPassphrase()
		if err != nil {
			log.Fatalf("read passphrase: %v", err)
		}
		passphrase = p
	}
	defer common.WipeByteArray(passphrase)

	salt, err := hex.DecodeString(cfg.EncryptionSaltHex)
	if err != nil {
		log.Fatalf("invalid encryption salt: %v", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer rm.Close()

	workers, err := archiver.NewCryptoWorkers(passphrase, salt, int32(cfg.CryptoWorkers))
	if err != nil {
		log.Fatalf("crypto workers: %v", err)
	}
	defer workers.Close()

	ts := services.NewTranscriptService(rm, workers, logger)

	t, err := ts.Export(ctx, *ticketID)
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		log.Fatalf("encode transcript: %v", err)
	}
}

// readPassphrase reads the passphrase from the terminal without echo.
func readPassphrase() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Enter passphrase: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return pw, err
}
