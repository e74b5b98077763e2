// Command cli is the gophauth operator console. It logs in against the
// gRPC endpoint and manages users and scopes interactively.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/dmitrijs2005/gophauth/internal/cli"
)

func main() {

	addr := flag.String("a", "127.0.0.1:50051", "address of the gophauth gRPC endpoint")
	flag.Parse()

	ctx := context.Background()
	app, err := cli.NewApp(*addr)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
