package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultkit/internal/crypt"
)

var cryptForce bool

var cryptCmd = &cobra.Command{
	Use:   "crypt",
	Short: "Encrypt and decrypt files with a Fernet key",
	Long: `Encrypts and decrypts files with Fernet tokens. Keys and tokens are
interchangeable with other Fernet implementations such as Python's
cryptography package.`,
}

var cryptNewKeyCmd = &cobra.Command{
	Use:   "new-key <key_file>",
	Short: "Write a new random key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := absPath(args[0])
		if _, err := crypt.NewKeyFile(path, cryptForce); err != nil {
			return fail(cmd, err)
		}
		return reportCreated(cmd, "key", path)
	},
}

var cryptEncryptCmd = &cobra.Command{
	Use:   "encrypt <src> <dst> <key_file>",
	Short: "Encrypt src into dst",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := crypt.ReadKeyFile(args[2])
		if err != nil {
			return fail(cmd, err)
		}
		dst := absPath(args[1])
		if err := crypt.EncryptFile(args[0], dst, k); err != nil {
			return fail(cmd, err)
		}
		return reportCreated(cmd, "encrypted", dst)
	},
}

var cryptDecryptCmd = &cobra.Command{
	Use:   "decrypt <src> <dst> <key_file>",
	Short: "Decrypt src into dst",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := crypt.ReadKeyFile(args[2])
		if err != nil {
			return fail(cmd, err)
		}
		dst := absPath(args[1])
		if err := crypt.DecryptFile(args[0], dst, k); err != nil {
			return fail(cmd, err)
		}
		return reportCreated(cmd, "plaintext", dst)
	},
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// reportCreated prints the line for a file the command wrote.
func reportCreated(cmd *cobra.Command, kind, path string) error {
	out := cmd.OutOrStdout()
	if isJSONOutput() {
		outputSuccess(out, map[string]string{"kind": kind, "path": path}, nil)
		return nil
	}
	switch kind {
	case "key":
		fmt.Fprintf(out, "Created new key file at %q\n", path)
	default:
		fmt.Fprintf(out, "Created %s file at %q\n", kind, path)
	}
	return nil
}

func init() {
	cryptNewKeyCmd.Flags().BoolVar(&cryptForce, "force", false, "Replace an existing key file")

	cryptCmd.AddCommand(cryptNewKeyCmd)
	cryptCmd.AddCommand(cryptEncryptCmd)
	cryptCmd.AddCommand(cryptDecryptCmd)
	rootCmd.AddCommand(cryptCmd)
}
