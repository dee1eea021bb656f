// Package authrim implements the flow engine of a multi-tenant identity
// provider: it turns editable flow graphs into compiled execution plans and
// drives user sessions through them one capability submit at a time.
//
// The package splits into four cooperating parts. The condition subpackage
// evaluates the boolean expression trees embedded in flow definitions. The
// graph and plan subpackages hold the editable definition format and its
// compiled, execution-optimized form. The actorstore subpackage owns durable
// per-session state behind a transport-agnostic client interface. This root
// package ties them together as the Engine.
//
// A minimal setup:
//
//	engine, err := authrim.New().
//		WithRedis(client).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close()
//
//	res, err := engine.InitFlow(ctx, authrim.InitFlowRequest{
//		FlowType: "login",
//		TenantID: "acme",
//	})
package authrim
