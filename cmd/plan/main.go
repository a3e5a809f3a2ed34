package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"nico-interface-sol/internal/config"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/transfer"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/service"
	"nico-interface-sol/internal/svc"
	"nico-interface-sol/internal/types"
)

var (
	configFile   = flag.String("f", "etc/nico.yaml", "the config file")
	assetFlag    = flag.String("asset", "", "asset address (base58)")
	recipient    = flag.String("recipient", "", "recipient wallet (base58)")
	payer        = flag.String("payer", "", "payer / signer wallet (base58)")
	authority    = flag.String("authority", "", "optional transfer authority (base58)")
	owner        = flag.String("owner", "", "current owner, required for pNFT (base58)")
	tokenAccount = flag.String("token-account", "", "current token account, required for pNFT (base58)")
	caller       = flag.String("caller", "", "calling program for PDA signer seeds (base58)")
)

func main() {
	flag.Parse()

	c := config.MustLoad(*configFile)
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		fail("init logger: %v", err)
	}
	defer logger.Sync()

	req, callerProgram, err := buildRequest()
	if err != nil {
		fail("%v", err)
	}

	serviceContext, err := svc.NewServiceContext(*c)
	if err != nil {
		fail("init service context: %v", err)
	}
	defer serviceContext.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	planner := service.NewTransferPlanner(serviceContext.Resolver, serviceContext.Source, callerProgram)
	invocations, err := planner.Plan(ctx, req)
	if err != nil {
		fail("plan transfer: %v", err)
	}
	for i, inv := range invocations {
		printInvocation(i, inv)
	}
}

func buildRequest() (service.PlanRequest, types.Pubkey, error) {
	var req service.PlanRequest
	var err error
	if req.Asset, err = requiredKey("asset", *assetFlag); err != nil {
		return req, types.Pubkey{}, err
	}
	if req.Recipient, err = requiredKey("recipient", *recipient); err != nil {
		return req, types.Pubkey{}, err
	}
	if req.Payer, err = requiredKey("payer", *payer); err != nil {
		return req, types.Pubkey{}, err
	}
	if req.Authority, err = optionalKey("authority", *authority); err != nil {
		return req, types.Pubkey{}, err
	}

	var mintCtx domain.MintContext
	if mintCtx.CurrentOwner, err = optionalKey("owner", *owner); err != nil {
		return req, types.Pubkey{}, err
	}
	if mintCtx.CurrentTokenAccount, err = optionalKey("token-account", *tokenAccount); err != nil {
		return req, types.Pubkey{}, err
	}
	req.MintContext = mintCtx

	callerProgram, err := optionalKey("caller", *caller)
	if err != nil || callerProgram == nil {
		return req, types.Pubkey{}, err
	}
	return req, *callerProgram, nil
}

func requiredKey(name, value string) (types.Pubkey, error) {
	if value == "" {
		return types.Pubkey{}, fmt.Errorf("-%s is required", name)
	}
	key, err := types.TryPubkeyFromBase58(value)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("-%s: %w", name, err)
	}
	return key, nil
}

func optionalKey(name, value string) (*types.Pubkey, error) {
	if value == "" {
		return nil, nil
	}
	key, err := requiredKey(name, value)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func printInvocation(i int, inv transfer.Invocation) {
	ix := inv.Instruction
	fmt.Printf("instruction #%d\n", i)
	fmt.Printf("  program: %s\n", ix.ProgramID.ToBase58())
	for j, meta := range ix.Accounts {
		flags := ""
		if meta.IsSigner {
			flags += "s"
		}
		if meta.IsWritable {
			flags += "w"
		}
		fmt.Printf("  #%-2d %-44s %s\n", j, meta.PubKey.ToBase58(), flags)
	}
	fmt.Printf("  data: %s\n", types.EncodeBase58(ix.Data))
	if len(inv.SignerSeeds) > 0 {
		fmt.Printf("  signer seeds: %d\n", len(inv.SignerSeeds))
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
