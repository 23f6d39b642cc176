package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/VIISON/scs-commander/pkg/plugin"
	"github.com/VIISON/scs-commander/pkg/release"
	"github.com/VIISON/scs-commander/pkg/store"
)

func main() {
	// Usage: go run main.go -username "your_shopware_id" -password "your_password" MyPlugin.zip

	userFlag := flag.String("username", "", "Shopware ID")
	passFlag := flag.String("password", "", "Shopware account password")

	// Parse the command-line flags
	flag.Parse()

	if *userFlag == "" {
		fmt.Println("Username is required. Please provide the Shopware ID using -username flag.")
		return
	}

	if *passFlag == "" {
		fmt.Println("Password is required. Please provide the password using -password flag.")
		return
	}

	if flag.NArg() != 1 {
		fmt.Println("Exactly one plugin archive is required.")
		return
	}
	archivePath := flag.Arg(0)

	// The archive carries the technical name, version, changelog and the
	// compatible Shopware versions.
	desc, err := plugin.ReadDescriptor(archivePath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	desc.Changelog, err = plugin.ReadChangelog(archivePath, desc.Version)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := store.NewClient(store.DEFAULT_ENDPOINT)
	if err := client.Login(ctx, *userFlag, *passFlag); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	orch := release.NewOrchestrator(client)
	result, err := orch.Release(ctx, desc, archivePath, release.Options{
		OnStep: func(s release.Step) { fmt.Println(s) },
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	for _, w := range result.Warnings {
		fmt.Println("warning:", w.Message)
	}

	switch result.Outcome {
	case release.OutcomePublished:
		fmt.Printf("%s %s is published in the store\n", desc.Name, desc.Version)
	case release.OutcomeAwaitingRelease:
		fmt.Printf("%s %s is saved and awaiting its release\n", desc.Name, desc.Version)
	}
}
