/*
Package hmm implements exact posterior inference for discrete hidden Markov
models: the forward and backward recursions, filtering and smoothing
distributions, and sequence likelihoods.

Conventions follow the column-stochastic form. A model over N hidden states
and M visible symbols is given by an initial distribution over h_0, a
transition matrix with transition[i][j] = P(h_t = i | h_{t-1} = j) and an
emission matrix with emission[v][j] = P(v_t = v | h_t = j); every column of
both matrices sums to one. Observation sequences are symbol indices in [0, M).

# Key Entities

  - Model: validated, immutable parameter set. New rejects anything that is
    not column-stochastic and reports every violation at once.
  - Table: states-by-steps matrix holding forward (alpha) or backward (beta)
    quantities for one observation sequence.
  - Forward/Backward: the reference recursions over unnormalized joints.
  - ForwardScaled/BackwardScaled: per-step normalized variants that survive
    long sequences and expose the log-likelihood through their scale factors.

Reference tables store alpha[i][t] = P(h_t = i, v_0..v_t) and
beta[i][t] = P(v_{t+1}..v_{T-1} | h_t = i). They reproduce textbook values
exactly but underflow for long sequences; the scaled variants normalize each
column and return the scale factors instead, so posteriors and
log-likelihoods stay finite for arbitrary lengths.

This package is pure computation: no I/O, no logging, no goroutines.
*/
package hmm
