// Package kcatflux prepares kcat and flux tables and maps turnover numbers onto
// predicted fluxes, falling back to taxonomic relatives when a species has no flux.
package kcatflux
