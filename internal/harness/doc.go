// Package harness runs move-kernel scenarios described in YAML.
//
// A scenario fixes everything a kernel call depends on: the likelihood, the
// starting state and the exact sequence of random draws. The harness applies
// the listed moves in order, checks each step's outcome and evaluates
// assertions on the final state. Because the draws are scripted, a scenario
// also pins the draw order: a kernel that asks for a different kind of draw,
// or more draws than the scenario lists, fails the step.
//
// # Scenario Format
//
//	name: alpha_flat_three
//	description: "Ancestry redraw under a flat likelihood"
//	likelihood: flat        # flat | frozen | model
//	cases: 3                # flat and frozen only
//	sd_mu: 0.1
//	state:
//	  mu: 0.5
//	  t_inf: [0, 1, 2]
//	  alpha: [0, 1, 2]      # 0 marks a root
//	draws:
//	  - uniform: 0.3
//	  - normal: 0.25        # already scaled by sd_mu
//	steps:
//	  - move: alpha
//	    expect: { proposed: 2, accepted: 2, skipped: 1 }
//	assertions:
//	  - type: final_state
//	    alpha: [0, 1, 1]
//	  - type: draws_remaining
//	    count: 0
//
// # Likelihoods
//
//   - flat: every view scores 0, so every proposal is accepted
//   - frozen: the starting state scores 0 and every other state -Inf, so
//     every proposal is rejected
//   - model: the reference likelihood over inline case data
//
// # Assertion Types
//
//   - final_state: subset match on mu, t_inf and alpha
//   - draws_remaining: number of scripted draws left unused
//   - order_preserved: every infector is strictly earlier than its infectee
//   - roots_stable: the set of roots did not change
//   - unchanged: the final state equals the starting state
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/alpha_flat_three.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
