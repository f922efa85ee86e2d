// Package service turns a service definition into a reconciliation
// plan: it validates option combinations, selects the sv/service/init.d
// parent directories from their candidate lists, applies the umask to
// the executable and non-executable base modes, and builds the ordered
// record list covering the runit service layout (run script, log
// subtree, extra files and scripts, envdir, down marker, supervise
// links, service registration link, LSB integration link).
package service
