// Package cmd contains the command-line utilities of prf: rm3expand, which expands the topics of a run with
// pseudo-relevance feedback, and prfindex, which builds the statistics index rm3expand reads. It also contains the
// supporting code the utilities share, such as logging setup.
package cmd
