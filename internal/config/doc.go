// Package config provides configuration management for instancectl.
//
// Configuration is loaded and merged in the following order, later sources
// overriding earlier ones:
//
//  1. Default configuration (compiled in)
//  2. User configuration (~/.config/instancectl/config.yaml)
//  3. Project configuration (./.instancectl/config.yaml)
//
// A single directory can be used instead with LoadConfigFromPath.
//
// # Configuration Structure
//
//	auth:
//	  kubeconfig: ~/.kube/config
//	  context: my-cluster
//	  oidc:
//	    enabled: true
//	    sessionURL: https://kubeapps.example.com/api/clusters
//	    logoutURL: /oauth2/sign_out
//	    cookieName: _oauth2_proxy
//	    issuerURL: https://dex.example.com   # optional, verifies the cookie as an ID token
//	    clientID: instancectl
//	session:
//	  stateFile: ~/.config/instancectl/session.yaml
//	  checkInterval: 1m
//	form:
//	  fieldManager: instancectl
//	  diffContext: 3
//	serve:
//	  transport: streamable-http
//	  port: 8091
//	  metricsAddr: localhost:9091
package config
