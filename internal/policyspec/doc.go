// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

/*
Package policyspec turns textual policy descriptions into bucket.Policy values.

Accepted literal forms:

	bottomless
	pierced
	counts:N
	seconds:N
	ttl:90s                       (any Go duration, whole seconds)
	B/A/D                         (budget/access cost/decay cost)
	budget=B,access=A,decay=D

Named policies come from an HCL file:

	policy "api" {
	  budget     = 2 * hour
	  access_cost = 10
	  decay_cost  = 1
	}

	policy "tiny" {
	  preset = "counts:3"
	}

or from the config file under the "policies" key.
*/
package policyspec
