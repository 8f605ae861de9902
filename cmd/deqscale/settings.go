package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// loadSettings fills flags that were not given on the command line from
// DEQSCALE_* environment variables and a yaml settings file: --config if set,
// otherwise .deqscale.yaml in the working or home directory. Keys are flag
// names, e.g.
//
//	data: /var/lib/deqscale
//	log-level: debug
//	method: RK45
//	rtol: 1e-8
func loadSettings(cmd *cobra.Command, path string) error {
	v := viper.New()
	v.SetEnvPrefix("deqscale")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".deqscale")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("settings: %w", err)
		}
	}

	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		if setErr := applySetting(cmd.Flags(), f, v); setErr != nil {
			err = fmt.Errorf("settings: %s: %w", f.Name, setErr)
		}
	})
	return err
}

// applySetting sets f from v. Lists fill slice flags and mappings fill
// key=value flags; everything else goes through the flag's string form.
// Viper lower-cases mapping keys, so --maxima entries read from a file must
// name lower-case states.
func applySetting(flags *pflag.FlagSet, f *pflag.Flag, v *viper.Viper) error {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		if err := sv.Replace(v.GetStringSlice(f.Name)); err != nil {
			return err
		}
		f.Changed = true
		return nil
	}
	if f.Value.Type() == "stringToString" {
		m := v.GetStringMapString(f.Name)
		if len(m) == 0 {
			return nil
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + m[k]
		}
		return flags.Set(f.Name, strings.Join(pairs, ","))
	}
	return flags.Set(f.Name, v.GetString(f.Name))
}
