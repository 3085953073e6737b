// Package viewstamp orders (epoch, view) pairs. Epochs advance on
// recovery events; views advance with each leadership term inside an
// epoch, so pairs are compared lexicographically.
package viewstamp
