package objectstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dsar/internal/discovery/models"
)

// EnvSecretResolver reads DSAR_SECRET_<NAME>_ACCESS_KEY and
// DSAR_SECRET_<NAME>_SECRET_KEY, with NAME upper-cased and '-' or '.'
// replaced by '_'.
type EnvSecretResolver struct {
	lookup func(string) (string, bool)
}

func NewEnvSecretResolver() *EnvSecretResolver {
	return &EnvSecretResolver{lookup: os.LookupEnv}
}

func (r *EnvSecretResolver) Resolve(_ context.Context, ref models.SecretRef) (Credentials, error) {
	name := strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(ref.Name))
	access, ok := r.lookup("DSAR_SECRET_" + name + "_ACCESS_KEY")
	if !ok || access == "" {
		return Credentials{}, fmt.Errorf("secret %s: access key not set", ref.Name)
	}
	secret, ok := r.lookup("DSAR_SECRET_" + name + "_SECRET_KEY")
	if !ok || secret == "" {
		return Credentials{}, fmt.Errorf("secret %s: secret key not set", ref.Name)
	}
	return Credentials{AccessKey: access, SecretKey: secret}, nil
}
