// Package gateway provides the deployment-tracker gateway as a reusable
// library that can be embedded into other Go applications.
//
// # Overview
//
// The gateway mediates access to a record of deployment events stored in
// an AWS-hosted Elasticsearch index. Human operators authenticate through
// the corporate Google identity provider; automated callers present a
// shared API key on machine-callable routes. Privileged mutations are
// restricted to an admin allow-list, and qualifying events are announced
// to Slack and raised as Jira tickets on a best-effort basis.
//
// # Basic Usage
//
// Build the gateway from a configuration file and run it:
//
//	gw, err := gateway.NewFromConfigFile("configs/gateway.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := gw.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Construction fails fast: a missing mandatory configuration key or an
// unresolvable AWS credential chain aborts startup before any route
// becomes reachable.
//
// # Using with Existing HTTP Server
//
// Integrate the gateway into an existing HTTP server:
//
//	gw, err := gateway.NewFromConfigFile("configs/gateway.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Mount the gateway under a specific path
//	http.Handle("/deploy/", http.StripPrefix("/deploy", gw.Handler()))
//
//	http.ListenAndServe(":8080", nil)
//
// # Direct Service Access
//
// Access the deployment-record service directly for programmatic control:
//
//	svc := gw.Service()
//
//	d, err := svc.Create(ctx, deployments.NewDeployment{
//		Service:     "comms",
//		Environment: "prod",
//		Version:     "1.2.3",
//		Deployer:    "release-pipeline",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("recorded deployment: %s\n", d.ID)
package gateway
