package monitor

// Reason is the taxonomy of triggers for (re)validation. It is the only
// vocabulary by which collaborators request a connectivity check.
type Reason int

const (
	// ReasonNetworkUpdate: the interface's IP provisioning completed or
	// changed; any previous prober state is meaningless.
	ReasonNetworkUpdate Reason = iota
	// ReasonServiceReorder: the service moved in the connection
	// priority order.
	ReasonServiceReorder
	// ReasonServiceProperty: a property of the service changed.
	ReasonServiceProperty
	// ReasonManagerProperty: a manager-level property changed.
	ReasonManagerProperty
	// ReasonUserRequest: an explicit revalidation request arrived over
	// the control API.
	ReasonUserRequest
	// ReasonGatewayReachable: the default gateway answered pings again.
	ReasonGatewayReachable
	// ReasonGatewayUnreachable: the default gateway stopped answering.
	ReasonGatewayUnreachable
	// ReasonRetryValidation: scheduled retry after a failed attempt.
	ReasonRetryValidation
)

func (r Reason) String() string {
	switch r {
	case ReasonNetworkUpdate:
		return "network_update"
	case ReasonServiceReorder:
		return "service_reorder"
	case ReasonServiceProperty:
		return "service_property"
	case ReasonManagerProperty:
		return "manager_property"
	case ReasonUserRequest:
		return "user_request"
	case ReasonGatewayReachable:
		return "gateway_reachable"
	case ReasonGatewayUnreachable:
		return "gateway_unreachable"
	case ReasonRetryValidation:
		return "retry_validation"
	}
	return "unknown"
}

// resetsAttemptDelays reports whether this trigger should skip any
// pending backoff. Fresh networks, user requests, reordering and a
// recovered gateway all want an immediate answer; the rest wait out the
// schedule.
func (r Reason) resetsAttemptDelays() bool {
	switch r {
	case ReasonNetworkUpdate, ReasonUserRequest, ReasonServiceReorder, ReasonGatewayReachable:
		return true
	}
	return false
}
