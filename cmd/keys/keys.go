package keys

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/security"
)

type Keys struct{}

func printUsage() {
	fmt.Println("Available commands:")
	fmt.Println("  help                     Show this help message")
	fmt.Println("  shutdown                 Exit the application")
	fmt.Println("  encrypt <token>          Encrypt a bridge API token for BRIDGE_API_TOKEN")
	fmt.Println("  decrypt <ciphertext>     Decrypt a stored token (sanity check)")
	fmt.Println()
}

// Start runs the interactive credential helper. Tokens are encrypted with
// the key from BRIDGE_CREDENTIALS_KEY so the plaintext never lands in env
// files or the database.
func (k *Keys) Start() error {
	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 1024), 1024*1024)

	printUsage()
	for {
		fmt.Print("cmd> ")

		if !reader.Scan() {
			return reader.Err()
		}

		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, " ")
		switch parts[0] {

		case "shutdown":
			fmt.Println("Exiting CLI...")
			return nil

		case "help":
			printUsage()

		case "encrypt":
			if len(parts) < 2 {
				printUsage()
				continue
			}
			ciphertext, err := security.EncryptString(parts[1])
			if err != nil {
				fmt.Printf("encrypt failed: %v\n", err)
				continue
			}
			fmt.Println(ciphertext)

		case "decrypt":
			if len(parts) < 2 {
				printUsage()
				continue
			}
			plaintext, err := security.DecryptString(parts[1])
			if err != nil {
				fmt.Printf("decrypt failed: %v\n", err)
				continue
			}
			fmt.Println(plaintext)

		default:
			printUsage()
		}
	}
}
