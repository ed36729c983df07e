package model

import internalmodel "github.com/goliatone/go-formkit/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	KindShortText = internalmodel.KindShortText
	KindLongText  = internalmodel.KindLongText
	KindNumber    = internalmodel.KindNumber
	KindEmail     = internalmodel.KindEmail
	KindPhone     = internalmodel.KindPhone
	KindDate      = internalmodel.KindDate
	KindSelect    = internalmodel.KindSelect
	KindRadio     = internalmodel.KindRadio
	KindCheckbox  = internalmodel.KindCheckbox
	KindToggle    = internalmodel.KindToggle
	KindSignature = internalmodel.KindSignature
	KindFile      = internalmodel.KindFile
)

const (
	OperatorEquals      = internalmodel.OperatorEquals
	OperatorNotEquals   = internalmodel.OperatorNotEquals
	OperatorContains    = internalmodel.OperatorContains
	OperatorGreaterThan = internalmodel.OperatorGreaterThan
	OperatorLessThan    = internalmodel.OperatorLessThan
)

type ConditionalRule = internalmodel.ConditionalRule
type Field = internalmodel.Field
type FormSchema = internalmodel.FormSchema

// Shape re-exports the Value variant tag.
type Shape = internalmodel.Shape

const (
	ShapeNone   = internalmodel.ShapeNone
	ShapeText   = internalmodel.ShapeText
	ShapeNumber = internalmodel.ShapeNumber
	ShapeList   = internalmodel.ShapeList
	ShapeBool   = internalmodel.ShapeBool
	ShapeBlob   = internalmodel.ShapeBlob
)

type Value = internalmodel.Value
type FormData = internalmodel.FormData

type Issue = internalmodel.Issue
type IssueKind = internalmodel.IssueKind

const (
	IssueDanglingReference = internalmodel.IssueDanglingReference
	IssueSelfReference     = internalmodel.IssueSelfReference
	IssueCycle             = internalmodel.IssueCycle
	IssueUnknownOperator   = internalmodel.IssueUnknownOperator
	IssueNoOptions         = internalmodel.IssueNoOptions
)
