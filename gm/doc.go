// Package gm (stands for geometry math) provides the small geometry
// primitives used by the tree2d component kinds and the examples.
//
// It includes a simple 2d vector type called Vec and a type named Rad to
// represent angle values in radian.
package gm
