package main

import (
	"context"

	"rollcall-backend/cmd/votes/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
