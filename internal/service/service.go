// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives
// validated identifiers from the handler, calls the repositories, and
// builds the ad-limit resolvers the ad-serving layer reads from.
package service
