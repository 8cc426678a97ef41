// generate-token mints a bearer token for local testing, signed with the
// jwt_key from the given config folder.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/parley-chat/parley/shared/config"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/jwt"
)

func main() {
	var (
		configFolder string
		uid          int64
		handle       string
	)
	pflag.StringVar(&configFolder, "config-folder", "backend/config", "path to folder with configs")
	pflag.Int64Var(&uid, "uid", 0, "user id the token is issued for")
	pflag.StringVar(&handle, "handle", "", "user handle stored in the token")
	pflag.Parse()

	if uid == 0 {
		fmt.Fprintln(os.Stderr, "--uid is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configFolder)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := jwt.New(cfg.JwtKey(), cfg.JwtTTL()).NewToken(domain.User{Id: uid, Handle: handle})
	if err != nil {
		log.Fatalf("Failed to create token: %v", err)
	}
	fmt.Println(token)
}
